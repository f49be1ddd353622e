package resolver

import "weaver/pkg/config"

// Options carries the resolver settings wired from
// pkg/config.ResolverConfig (§4.3 EXPANSION). Resolve reads only
// WarningsAsErrors; MaxExtendsDepth and MaxIncludeDepth are not read, so
// extends/include chains have no depth limit (cycles are still reported).
type Options struct {
	MaxExtendsDepth  int
	MaxIncludeDepth  int
	WarningsAsErrors bool
}

// DefaultOptions mirrors pkg/config's loaded defaults, for callers that
// construct a resolver without going through config.
func DefaultOptions() Options {
	return Options{MaxExtendsDepth: 32, MaxIncludeDepth: 32, WarningsAsErrors: false}
}

// OptionsFromConfig adapts a loaded resolver config block into Options.
func OptionsFromConfig(cfg config.ResolverConfig) Options {
	return Options{
		MaxExtendsDepth:  cfg.MaxExtendsDepth,
		MaxIncludeDepth:  cfg.MaxIncludeDepth,
		WarningsAsErrors: cfg.WarningsAsErrors,
	}
}
