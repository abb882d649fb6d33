// Package discover lists the Nix files of a project tree.
package discover

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile holds extra gitignore-style patterns that only nixscan reads.
const IgnoreFile = ".nixscanignore"

// DefaultSkipDirs are never descended into.
var DefaultSkipDirs = []string{".git", "result", ".direnv", "node_modules"}

type Options struct {
	// SkipDirs are directory names skipped in addition to DefaultSkipDirs.
	SkipDirs []string
	// Exclude holds gitignore-style patterns relative to the root.
	Exclude []string
	// NoIgnoreFiles disables .gitignore and .nixscanignore.
	NoIgnoreFiles bool
	Logger        *slog.Logger
}

type matcher struct {
	base string // slash path relative to root, "" for the root itself
	gi   *ignore.GitIgnore
}

func (m matcher) matches(rel string, dir bool) bool {
	if m.base != "" {
		if !strings.HasPrefix(rel, m.base+"/") {
			return false
		}
		rel = strings.TrimPrefix(rel, m.base+"/")
	}
	if m.gi.MatchesPath(rel) {
		return true
	}
	return dir && m.gi.MatchesPath(rel+"/")
}

// Files returns the *.nix files under root sorted by path. A root that is a
// file is returned as is.
func Files(root string, opts Options) ([]string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	skip := append(slices.Clone(DefaultSkipDirs), opts.SkipDirs...)
	var matchers []matcher
	if len(opts.Exclude) > 0 {
		matchers = append(matchers, matcher{gi: ignore.CompileIgnoreLines(opts.Exclude...)})
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != root && errors.Is(err, fs.ErrPermission) {
				logger.Warn("discover.skip", "path", p, "err", err)
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." {
				if slices.Contains(skip, d.Name()) || ignored(matchers, rel, true) {
					return filepath.SkipDir
				}
			}
			if !opts.NoIgnoreFiles {
				base := rel
				if base == "." {
					base = ""
				}
				matchers = append(matchers, loadIgnores(p, base, logger)...)
			}
			return nil
		}
		if path.Ext(rel) != ".nix" || ignored(matchers, rel, false) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	logger.Debug("discover.done", "root", root, "files", len(files))
	return files, nil
}

func ignored(matchers []matcher, rel string, dir bool) bool {
	for _, m := range matchers {
		if m.matches(rel, dir) {
			return true
		}
	}
	return false
}

func loadIgnores(dir, base string, logger *slog.Logger) []matcher {
	var out []matcher
	for _, name := range []string{".gitignore", IgnoreFile} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		gi, err := ignore.CompileIgnoreFile(p)
		if err != nil {
			logger.Warn("discover.ignore.err", "path", p, "err", err)
			continue
		}
		out = append(out, matcher{base: base, gi: gi})
	}
	return out
}
