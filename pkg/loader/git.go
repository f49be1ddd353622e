package loader

import (
	"context"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"weaver/pkg/apperror"
)

// gitSource clones vp.Location into a temporary directory (optionally
// checking out vp.Refspec) and then delegates enumeration/reads to a
// localSource rooted at the clone's subpath.
type gitSource struct {
	tmpDir string
	inner  *localSource
}

func newGitSource(ctx context.Context, vp VirtualPath, cfg SourceConfig) (*gitSource, error) {
	tmpDir, err := os.MkdirTemp(cfg.CacheDir, "weaver-git-*")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLoaderUnreachable, "failed to create clone directory")
	}

	cloneOpts := &git.CloneOptions{
		URL:   vp.Location,
		Depth: 1,
	}
	if vp.Refspec != "" {
		// A named branch/tag clones shallow directly on that ref; a raw
		// commit hash requires a full clone followed by a checkout, since
		// shallow clones cannot fetch an arbitrary commit by default.
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(vp.Refspec)
		cloneOpts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, cloneOpts)
	if err != nil && vp.Refspec != "" {
		// Fall back to a full clone + explicit checkout, covering tags and
		// commit hashes that PlainClone's ReferenceName shortcut can't reach.
		_ = os.RemoveAll(tmpDir)
		tmpDir, err = os.MkdirTemp(cfg.CacheDir, "weaver-git-*")
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLoaderUnreachable, "failed to create clone directory")
		}
		repo, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: vp.Location})
		if err != nil {
			_ = os.RemoveAll(tmpDir)
			return nil, apperror.Wrap(err, apperror.CodeLoaderUnreachable, "failed to clone "+vp.Location)
		}
		wt, wtErr := repo.Worktree()
		if wtErr != nil {
			_ = os.RemoveAll(tmpDir)
			return nil, apperror.Wrap(wtErr, apperror.CodeLoaderUnreachable, "failed to open worktree")
		}
		hash, resolveErr := repo.ResolveRevision(plumbing.Revision(vp.Refspec))
		if resolveErr != nil {
			_ = os.RemoveAll(tmpDir)
			return nil, apperror.Wrap(resolveErr, apperror.CodeLoaderUnreachable, "failed to resolve ref "+vp.Refspec)
		}
		if checkoutErr := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); checkoutErr != nil {
			_ = os.RemoveAll(tmpDir)
			return nil, apperror.Wrap(checkoutErr, apperror.CodeLoaderUnreachable, "failed to checkout "+vp.Refspec)
		}
	} else if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, apperror.Wrap(err, apperror.CodeLoaderUnreachable, "failed to clone "+vp.Location)
	}

	root := tmpDir
	if vp.Subpath != "" {
		root = tmpDir + string(os.PathSeparator) + vp.Subpath
	}

	return &gitSource{tmpDir: tmpDir, inner: newLocalSourceAt(root)}, nil
}

func (s *gitSource) List(ctx context.Context) ([]string, error) { return s.inner.List(ctx) }

func (s *gitSource) Read(ctx context.Context, path string) ([]byte, error) {
	return s.inner.Read(ctx, path)
}

func (s *gitSource) Close() error {
	return os.RemoveAll(s.tmpDir)
}
