package discovery

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Matcher matches paths against gitignore-style patterns: configured exclude
// patterns plus any .gitignore files found under the roots.
type Matcher struct {
	roots   []string
	exclude []string
	rules   []ignoreRule
}

type ignoreRule struct {
	pattern  string
	negation bool
	dirOnly  bool
	basePath string // directory holding the .gitignore; empty for configured patterns
}

// NewMatcher creates a matcher for the given roots. Call Load before Match.
func NewMatcher(roots []string, exclude []string) *Matcher {
	return &Matcher{roots: roots, exclude: exclude}
}

// Load parses the exclude patterns and every .gitignore under the roots.
func (m *Matcher) Load() error {
	m.rules = nil
	for _, p := range m.exclude {
		m.rules = append(m.rules, parsePattern(p, ""))
	}

	for _, root := range m.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip inaccessible entries
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name() == ".gitignore" {
				rules, loadErr := loadIgnoreFile(path)
				if loadErr != nil {
					return nil // skip unreadable gitignore files
				}
				m.rules = append(m.rules, rules...)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Match reports whether path is excluded. Later rules override earlier ones,
// so a negated pattern can re-include a path.
func (m *Matcher) Match(path string) bool {
	matched := false
	for _, rule := range m.rules {
		base := rule.basePath
		if base == "" {
			base = m.rootOf(path)
		}
		if matchPattern(rule.pattern, base, path) {
			matched = !rule.negation
		}
	}
	return matched
}

// rootOf returns the first root containing path, so configured patterns never
// match components of the root itself.
func (m *Matcher) rootOf(path string) string {
	for _, r := range m.roots {
		if _, ok := relativeTo(r, path); ok {
			return r
		}
	}
	return ""
}

func loadIgnoreFile(path string) ([]ignoreRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	basePath := filepath.Dir(path)
	var rules []ignoreRule
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, parsePattern(line, basePath))
	}
	return rules, scanner.Err()
}

func parsePattern(pattern string, basePath string) ignoreRule {
	rule := ignoreRule{basePath: basePath}
	if strings.HasPrefix(pattern, "!") {
		rule.negation = true
		pattern = pattern[1:]
	}
	// Directory-only patterns are matched against every path component, so
	// files below a matching directory are excluded too.
	if strings.HasSuffix(pattern, "/") {
		rule.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	rule.pattern = pattern
	return rule
}

// relativeTo returns path relative to base, or false when path lies outside it.
func relativeTo(base, path string) (string, bool) {
	if base == "" {
		return path, true
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

func matchPattern(pattern, basePath, path string) bool {
	rel, ok := relativeTo(basePath, path)
	if !ok {
		return false
	}

	if strings.Contains(pattern, "/") {
		if strings.Contains(pattern, "**") {
			return matchParts(splitPath(pattern), splitPath(rel))
		}
		matched, _ := filepath.Match(pattern, filepath.ToSlash(rel))
		return matched
	}

	// A pattern without a slash matches the basename or any path component.
	for _, part := range splitPath(rel) {
		if matched, _ := filepath.Match(pattern, part); matched {
			return true
		}
	}
	return false
}

func matchParts(patternParts, pathParts []string) bool {
	if len(patternParts) == 0 {
		return len(pathParts) == 0
	}

	if patternParts[0] == "**" {
		// ** matches zero or more directories.
		rest := patternParts[1:]
		for i := 0; i <= len(pathParts); i++ {
			if matchParts(rest, pathParts[i:]) {
				return true
			}
		}
		return false
	}

	if len(pathParts) == 0 {
		return false
	}
	if matched, _ := filepath.Match(patternParts[0], pathParts[0]); !matched {
		return false
	}
	return matchParts(patternParts[1:], pathParts[1:])
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(filepath.ToSlash(path), "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
