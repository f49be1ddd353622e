package main

import (
	"context"

	"weaver/pkg/apperror"
	"weaver/pkg/cache"
	"weaver/pkg/config"
	"weaver/pkg/loader"
	"weaver/pkg/resolver"
)

// loadAndResolve acquires rootPath (local directory, git:, or archive:
// virtual path) via pkg/loader, resolves its dependency tree bottom-up, and
// returns the resolved schema for rootPath itself. Dependencies must be
// resolved before the registry that declares them, since Resolve needs
// their already-resolved catalogs for cross-registry attribute references
// (§4.3's dependency lookup order).
func loadAndResolve(ctx context.Context, loaderCfg config.LoaderConfig, resolverOpts resolver.Options, rootPath string) (*resolver.ResolvedSchema, *apperror.ValidationErrors, error) {
	c := cache.MustNew(cache.FromConfig(&config.CacheConfig{Enabled: true, DefaultTTL: loaderCfg.CacheTTL, MaxEntries: 10000}))
	l := loader.New(loaderCfg, c)

	result, err := l.Load(ctx, rootPath)
	if err != nil {
		return nil, nil, err
	}

	r := resolver.New(resolverOpts)
	schema, verrs, err := resolveTree(ctx, r, result)
	return schema, verrs, err
}

// resolveTree resolves every dependency in result's tree before resolving
// result itself, collecting validation errors from every level rather than
// stopping at the first one (§4.3, §7).
func resolveTree(ctx context.Context, r *resolver.Resolver, result *loader.LoadResult) (*resolver.ResolvedSchema, *apperror.ValidationErrors, error) {
	all := apperror.NewValidationErrors()
	if result.Errors != nil {
		all.Merge(result.Errors)
	}

	deps := make([]*resolver.ResolvedSchema, 0, len(result.Dependencies))
	for _, dep := range result.Dependencies {
		depSchema, depErrs, err := resolveTree(ctx, r, dep)
		if err != nil {
			return nil, nil, err
		}
		if depErrs != nil {
			all.Merge(depErrs)
		}
		deps = append(deps, depSchema)
	}

	schema, err := r.Resolve(ctx, result.RegistryID, result.Files, deps)
	if err != nil {
		if ve, ok := err.(*apperror.ValidationErrors); ok {
			all.Merge(ve)
		} else {
			return nil, nil, err
		}
	}

	if all.HasErrors() {
		return schema, all, nil
	}
	return schema, nil, nil
}
