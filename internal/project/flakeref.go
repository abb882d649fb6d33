package project

import (
	"net/url"
	"strings"
)

// FlakeRef is a parsed flake reference such as github:NixOS/nixpkgs/nixos-24.05
// or git+https://example.org/repo?ref=main.
type FlakeRef struct {
	// Type is github, gitlab, sourcehut, git, mercurial, tarball, file,
	// path or indirect.
	Type  string
	Owner string
	Repo  string
	Host  string
	URL   string
	Path  string
	Ref   string
	Rev   string
	// ID is the registry name of an indirect reference (nixpkgs).
	ID string
	// Dir is the subdirectory holding the flake.
	Dir string
}

// IsLocal reports whether the reference points into the local filesystem.
func (r FlakeRef) IsLocal() bool {
	return r.Type == "path"
}

// ParseFlakeRef understands the common URL-like and shorthand forms. Unknown
// forms come back with Type "" and URL set to raw.
func ParseFlakeRef(raw string) FlakeRef {
	ref := FlakeRef{URL: raw}
	body, query, _ := strings.Cut(raw, "?")
	params, _ := url.ParseQuery(query)
	ref.Ref = params.Get("ref")
	ref.Rev = params.Get("rev")
	ref.Dir = params.Get("dir")

	scheme, rest, hasScheme := strings.Cut(body, ":")
	switch {
	case strings.HasPrefix(raw, "./"), strings.HasPrefix(raw, "../"), strings.HasPrefix(raw, "/"):
		ref.Type, ref.Path = "path", body
	case !hasScheme:
		ref.Type, ref.ID = "indirect", body
		if id, r, ok := strings.Cut(body, "/"); ok {
			ref.ID, ref.Ref = id, r
		}
	case scheme == "github" || scheme == "gitlab" || scheme == "sourcehut":
		ref.Type = scheme
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) > 0 {
			ref.Owner = parts[0]
		}
		if len(parts) > 1 {
			ref.Repo = parts[1]
		}
		if len(parts) > 2 && ref.Ref == "" {
			ref.Ref = parts[2]
		}
		ref.Host = params.Get("host")
	case scheme == "path":
		ref.Type, ref.Path = "path", rest
	case scheme == "flake":
		ref.Type, ref.ID = "indirect", rest
	case strings.HasPrefix(scheme, "git+") || scheme == "git":
		ref.Type = "git"
		ref.fillHost(strings.TrimPrefix(body, "git+"))
	case strings.HasPrefix(scheme, "hg+"):
		ref.Type = "mercurial"
		ref.fillHost(strings.TrimPrefix(body, "hg+"))
	case strings.HasPrefix(scheme, "tarball+"):
		ref.Type = "tarball"
		ref.fillHost(strings.TrimPrefix(body, "tarball+"))
	case strings.HasPrefix(scheme, "file+"):
		ref.Type = "file"
		ref.fillHost(strings.TrimPrefix(body, "file+"))
	case scheme == "http" || scheme == "https":
		ref.Type = "file"
		if isArchive(body) {
			ref.Type = "tarball"
		}
		ref.fillHost(body)
	}
	return ref
}

func (r *FlakeRef) fillHost(s string) {
	if u, err := url.Parse(s); err == nil {
		r.Host = u.Host
		r.Path = u.Path
	}
}

func isArchive(s string) bool {
	for _, ext := range []string{".tar.gz", ".tgz", ".tar.xz", ".tar.bz2", ".tar.zst", ".zip", ".tar"} {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}
