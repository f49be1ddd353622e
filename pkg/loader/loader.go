package loader

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"weaver/pkg/apperror"
	"weaver/pkg/cache"
	"weaver/pkg/config"
	"weaver/pkg/metrics"
	"weaver/pkg/semconv"
	"weaver/pkg/telemetry"
)

// RawFile is one parsed registry YAML document plus its provenance.
type RawFile struct {
	Provenance semconv.Provenance
	Groups     []semconv.RawGroup
}

// LoadResult is everything the loader produced for one registry root: its
// own files, its manifest (if any), and its recursively-acquired
// dependencies, each itself a LoadResult (§4.1).
type LoadResult struct {
	RegistryID   string
	Manifest     *semconv.RegistryManifest
	Files        []RawFile
	Dependencies []*LoadResult
	// Errors collects per-file parse/read failures; a non-fatal file error
	// does not stop the rest of the registry from loading (§4.1's "other
	// files are still attempted").
	Errors *apperror.ValidationErrors
}

// Loader acquires registry files from a virtual path and parses them,
// resolving registry_manifest.yaml dependencies recursively.
type Loader struct {
	cfg     config.LoaderConfig
	cache   cache.Cache
	metrics *metrics.Metrics

	mu   sync.Mutex
	seen map[string]bool // dependency keys already fetched in this Load() call tree
}

// New returns a Loader configured from cfg. Each fetched dependency is
// recorded in c; repeated-dependency fetches (diamond dependencies) within a
// Load are skipped through the Loader's own seen set, not by reading c.
func New(cfg config.LoaderConfig, c cache.Cache) *Loader {
	if c == nil {
		c = cache.MustNew(cache.DefaultOptions())
	}
	return &Loader{cfg: cfg, cache: c, metrics: metrics.Get(), seen: make(map[string]bool)}
}

// Load acquires and parses the registry rooted at rootPath, plus every
// dependency it transitively declares.
func (l *Loader) Load(ctx context.Context, rootPath string) (*LoadResult, error) {
	l.mu.Lock()
	l.seen = make(map[string]bool)
	l.mu.Unlock()
	return telemetry.Traced(ctx, "loader.load", telemetry.RegistryAttributes(rootPath, "", 0), func(ctx context.Context) (*LoadResult, error) {
		return l.load(ctx, rootPath, rootPath, map[string]bool{})
	})
}

const registryManifestFile = "registry_manifest.yaml"

func (l *Loader) load(ctx context.Context, registryPath, registryID string, visiting map[string]bool) (*LoadResult, error) {
	if visiting[registryPath] {
		return nil, apperror.New(apperror.CodeLoaderDependencyCycle,
			fmt.Sprintf("dependency cycle detected while loading %q", registryPath))
	}
	visiting[registryPath] = true
	defer delete(visiting, registryPath)

	start := time.Now()

	vp, err := ParsePath(registryPath)
	if err != nil {
		l.recordFetch("unknown", false, time.Since(start))
		return nil, err
	}

	src, err := NewSource(ctx, vp, SourceConfig{CacheDir: l.cfg.DependencyCacheDir})
	if err != nil {
		l.recordFetch(string(vp.Kind), false, time.Since(start))
		return nil, err
	}
	defer src.Close()

	paths, err := src.List(ctx)
	if err != nil {
		l.recordFetch(string(vp.Kind), false, time.Since(start))
		return nil, err
	}

	result := &LoadResult{RegistryID: registryID, Errors: apperror.NewValidationErrors()}

	for _, p := range paths {
		if path.Base(p) == registryManifestFile {
			data, err := src.Read(ctx, p)
			if err != nil {
				result.Errors.AddErrorWithField(apperror.CodeLoaderManifestError, err.Error(), p)
				continue
			}
			manifest, err := semconv.DecodeRegistryManifest(data)
			if err != nil {
				result.Errors.AddErrorWithField(apperror.CodeLoaderManifestError, err.Error(), p)
				continue
			}
			result.Manifest = manifest
		}
	}

	for _, p := range paths {
		if path.Base(p) == registryManifestFile {
			continue
		}
		data, err := src.Read(ctx, p)
		if err != nil {
			result.Errors.AddErrorWithField(apperror.CodeLoaderFileNotFound, err.Error(), p)
			continue
		}
		rf, err := semconv.DecodeRegistryFile(data)
		if err != nil {
			result.Errors.AddErrorWithField(apperror.CodeLoaderParseError, err.Error(), p)
			continue
		}
		prov := semconv.Provenance{RegistryID: registryID, Path: p}
		for i := range rf.Groups {
			rf.Groups[i].Provenance = prov
		}
		result.Files = append(result.Files, RawFile{Provenance: prov, Groups: rf.Groups})
	}

	l.recordFetch(string(vp.Kind), true, time.Since(start))

	if result.Manifest != nil && len(result.Manifest.Dependencies) > 0 {
		deps, err := l.loadDependencies(ctx, result.Manifest.Dependencies, visiting)
		if err != nil {
			return nil, err
		}
		result.Dependencies = deps
	}

	return result, nil
}

// loadDependencies acquires every declared dependency, bounded by
// MaxConcurrentFetch concurrent fetches, skipping any already fetched in
// this Load() call tree (diamond dependencies), per §4.1 EXPANSION.
func (l *Loader) loadDependencies(ctx context.Context, deps []semconv.ManifestDependency, visiting map[string]bool) ([]*LoadResult, error) {
	results := make([]*LoadResult, len(deps))

	limit := l.cfg.MaxConcurrentFetch
	if limit <= 0 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	branchVisiting := cloneVisiting(visiting)

	for i, dep := range deps {
		i, dep := i, dep
		key := cache.DependencyKey(dep.RegistryPath, dep.Version)

		if l.alreadyFetched(key) {
			continue
		}

		g.Go(func() error {
			mu.Lock()
			localVisiting := cloneVisiting(branchVisiting)
			mu.Unlock()

			depResult, err := l.load(ctx, dep.RegistryPath, dep.Name, localVisiting)
			if err != nil {
				return apperror.Wrap(err, apperror.CodeLoaderManifestError,
					fmt.Sprintf("failed to load dependency %q", dep.Name))
			}
			results[i] = depResult
			l.markFetched(key)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*LoadResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func cloneVisiting(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (l *Loader) alreadyFetched(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[key]
}

func (l *Loader) markFetched(key string) {
	l.mu.Lock()
	l.seen[key] = true
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = l.cache.Set(ctx, key, []byte(time.Now().UTC().Format(time.RFC3339)), l.cfg.CacheTTL)
}

func (l *Loader) recordFetch(sourceKind string, success bool, duration time.Duration) {
	if l.metrics == nil {
		return
	}
	if sourceKind == "" {
		sourceKind = "unknown"
	}
	l.metrics.RecordDependencyFetch(sourceKind, success, duration)
}

// AllFiles flattens a LoadResult and its dependencies (depth-first, deps
// before the registry that declared them) into a single ordered slice,
// the shape pkg/resolver consumes as its dependency-then-local resolution
// order (§4.3's "local → dependency catalogs, in order").
func (r *LoadResult) AllFiles() []RawFile {
	var out []RawFile
	for _, dep := range r.Dependencies {
		out = append(out, dep.AllFiles()...)
	}
	out = append(out, r.Files...)
	return out
}

// AllErrors collects this result's and every dependency's file errors into
// one ValidationErrors.
func (r *LoadResult) AllErrors() *apperror.ValidationErrors {
	all := apperror.NewValidationErrors()
	for _, dep := range r.Dependencies {
		all.Merge(dep.AllErrors())
	}
	all.Merge(r.Errors)
	return all
}
