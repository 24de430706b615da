// Package discovery finds the source files a project analysis should cover.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file extensions analyzed when none are configured.
var DefaultExtensions = []string{".c", ".h"}

// Options controls which files Discover returns.
type Options struct {
	// Extensions lists the recognized file extensions, including the dot.
	Extensions []string
	// Exclude holds gitignore-style patterns for paths to skip.
	Exclude []string
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions
	}
	return o.Extensions
}

// HasExtension reports whether path ends in one of exts, ignoring case.
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Discover walks root and returns every file with a recognized extension,
// sorted by path. If root is itself a file it is returned as the only entry,
// whatever its extension. The .git directory and excluded paths are skipped.
func Discover(ctx context.Context, root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	matcher := NewMatcher([]string{root}, opts.Exclude)
	if err := matcher.Load(); err != nil {
		return nil, fmt.Errorf("load ignore patterns: %w", err)
	}
	exts := opts.extensions()

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if d.Name() == ".git" || matcher.Match(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !HasExtension(path, exts) || matcher.Match(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Filter keeps the paths that have a recognized extension and are not
// excluded, preserving order. It is used for file lists that do not come
// from a directory walk, such as changed files.
func Filter(paths []string, opts Options) []string {
	matcher := NewMatcher(nil, opts.Exclude)
	_ = matcher.Load() // without roots only configured patterns are parsed
	exts := opts.extensions()

	var out []string
	for _, p := range paths {
		if HasExtension(p, exts) && !matcher.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
