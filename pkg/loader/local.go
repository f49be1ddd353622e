package loader

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"weaver/pkg/apperror"
)

// localSource reads directly from a filesystem directory; `archive:` and
// `git:` sources both resolve to one of these once their content has been
// extracted/checked out locally.
type localSource struct {
	root string
}

func newLocalSource(vp VirtualPath) (*localSource, error) {
	root := vp.Location
	if vp.Subpath != "" {
		root = filepath.Join(root, vp.Subpath)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoaderUnreachable, "registry path is unreachable: "+root)
	}
	if !info.IsDir() {
		return nil, apperror.New(apperror.CodeLoaderUnreachable, "registry path is not a directory: "+root)
	}
	return &localSource{root: root}, nil
}

func newLocalSourceAt(root string) *localSource {
	return &localSource{root: root}
}

func (s *localSource) List(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		lower := strings.ToLower(d.Name())
		if !strings.HasSuffix(lower, ".yaml") && !strings.HasSuffix(lower, ".yml") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoaderUnreachable, "failed to enumerate registry files")
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *localSource) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoaderFileNotFound, "failed to read "+path)
	}
	return data, nil
}

func (s *localSource) Close() error { return nil }
