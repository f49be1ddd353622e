// Package loader implements the registry loader (C2): acquiring a set of
// registry YAML files from a virtual directory path (local, git, or
// archive), enumerating them deterministically, parsing each into the raw
// model, and recursively resolving registry_manifest.yaml dependencies.
package loader

import (
	"strings"

	"weaver/pkg/apperror"
)

// Kind discriminates the three virtual path schemes named in §6.
type Kind string

const (
	KindLocal   Kind = "local"
	KindGit     Kind = "git"
	KindArchive Kind = "archive"
)

// VirtualPath is a parsed `local:`/`git:`/`archive:` directory reference.
type VirtualPath struct {
	Kind Kind
	// Location is the filesystem path (local) or URL (git, archive).
	Location string
	// Subpath is an optional directory within the source to treat as the
	// registry root.
	Subpath string
	// Refspec is an optional git ref (branch, tag, commit); only meaningful
	// for KindGit.
	Refspec string
}

// ParsePath parses a virtual directory path per §6:
//
//	local:path
//	git:url[subpath][@refspec]
//	archive:url[subpath]
//
// A path with no recognized scheme prefix is treated as `local:`.
func ParsePath(raw string) (VirtualPath, error) {
	if raw == "" {
		return VirtualPath{}, apperror.New(apperror.CodeInvalidArgument, "virtual path must not be empty")
	}

	scheme, rest, hasScheme := strings.Cut(raw, ":")
	if !hasScheme {
		return VirtualPath{Kind: KindLocal, Location: raw}, nil
	}

	switch Kind(scheme) {
	case KindLocal:
		return VirtualPath{Kind: KindLocal, Location: rest}, nil
	case KindGit:
		return parseGitPath(rest)
	case KindArchive:
		return parseArchivePath(rest)
	default:
		// Not one of our schemes (e.g. a Windows drive letter like "C:\foo");
		// treat the whole string as a local path.
		return VirtualPath{Kind: KindLocal, Location: raw}, nil
	}
}

// parseGitPath splits "url[subpath][@refspec]". The refspec, if present, is
// the text after the last '@' that follows the final '/' of the URL proper;
// subpath (if present) is separated from the URL by a single space, matching
// the teacher-idiom convention of keeping the URL itself unambiguous.
func parseGitPath(rest string) (VirtualPath, error) {
	if rest == "" {
		return VirtualPath{}, apperror.New(apperror.CodeInvalidArgument, "git virtual path missing URL")
	}

	url := rest
	subpath := ""
	if idx := strings.Index(rest, " "); idx >= 0 {
		url = rest[:idx]
		subpath = strings.TrimSpace(rest[idx+1:])
	}

	refspec := ""
	if idx := strings.LastIndex(subpath, "@"); idx >= 0 {
		refspec = subpath[idx+1:]
		subpath = subpath[:idx]
	} else if idx := strings.LastIndex(url, "@"); idx >= 0 && !strings.Contains(url[:idx], "://") {
		// only treat '@' as a refspec separator when it isn't part of an
		// ssh-style "user@host" authority
	} else if idx := lastAtAfterScheme(url); idx >= 0 {
		refspec = url[idx+1:]
		url = url[:idx]
	}

	return VirtualPath{Kind: KindGit, Location: url, Subpath: subpath, Refspec: refspec}, nil
}

// lastAtAfterScheme finds a trailing "@refspec" suffix on a git URL without
// mistaking the "user@" of an ssh authority for it: it only matches an '@'
// that occurs after the last '/'.
func lastAtAfterScheme(url string) int {
	slash := strings.LastIndex(url, "/")
	at := strings.LastIndex(url, "@")
	if at > slash {
		return at
	}
	return -1
}

func parseArchivePath(rest string) (VirtualPath, error) {
	if rest == "" {
		return VirtualPath{}, apperror.New(apperror.CodeInvalidArgument, "archive virtual path missing URL")
	}
	url := rest
	subpath := ""
	if idx := strings.Index(rest, " "); idx >= 0 {
		url = rest[:idx]
		subpath = strings.TrimSpace(rest[idx+1:])
	}
	return VirtualPath{Kind: KindArchive, Location: url, Subpath: subpath}, nil
}
