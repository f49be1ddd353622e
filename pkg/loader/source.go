package loader

import "context"

// Source enumerates and reads the YAML files of one registry root,
// regardless of where it physically lives (local directory, git checkout,
// extracted archive). Grounded in the teacher's pkg/cache.Cache
// interface-with-multiple-backends shape: one small interface, several
// concrete implementations selected by a prefix/scheme.
type Source interface {
	// List returns every "*.yaml"/"*.yml" file under the source's root,
	// depth-first, in lexicographic order (§4.1's determinism contract).
	// Paths are relative to the source root and usable as provenance paths.
	List(ctx context.Context) ([]string, error)

	// Read returns the raw bytes of the file at path (as returned by List).
	Read(ctx context.Context, path string) ([]byte, error)

	// Close releases any resources the source holds (temp clone/extraction
	// directories). Idempotent.
	Close() error
}

// NewSource constructs the Source implementation matching vp.Kind.
func NewSource(ctx context.Context, vp VirtualPath, cfg SourceConfig) (Source, error) {
	switch vp.Kind {
	case KindLocal:
		return newLocalSource(vp)
	case KindGit:
		return newGitSource(ctx, vp, cfg)
	case KindArchive:
		return newArchiveSource(ctx, vp, cfg)
	default:
		return nil, unsupportedSchemeError(string(vp.Kind))
	}
}

// SourceConfig carries the knobs a Source implementation needs that don't
// belong on VirtualPath itself (timeouts, cache directory).
type SourceConfig struct {
	CacheDir string
	Timeout  int64 // seconds; not read by any Source, which use only ctx's deadline
}
