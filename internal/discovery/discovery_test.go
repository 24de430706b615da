package discovery

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMatcherPatterns(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{
			name:     "match wildcard extension",
			patterns: []string{"*.o"},
			path:     "/project/main.o",
			want:     true,
		},
		{
			name:     "no match different extension",
			patterns: []string{"*.o"},
			path:     "/project/main.c",
			want:     false,
		},
		{
			name:     "match directory component",
			patterns: []string{"third_party"},
			path:     "/project/third_party/zlib/inflate.c",
			want:     true,
		},
		{
			name:     "match double star directory",
			patterns: []string{"**/build/**"},
			path:     "/project/src/build/gen.c",
			want:     true,
		},
		{
			name:     "double star matches the directory itself",
			patterns: []string{"**/build/**"},
			path:     "/project/build",
			want:     true,
		},
		{
			name:     "match directory-only pattern",
			patterns: []string{"generated/"},
			path:     "/project/generated/table.h",
			want:     true,
		},
		{
			name:     "do not exclude source",
			patterns: []string{"**/build/**", "*.o"},
			path:     "/project/src/shell.c",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(nil, tt.patterns)
			if err := m.Load(); err != nil {
				t.Fatal(err)
			}
			got := m.Match(tt.path)
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMatcherNegation(t *testing.T) {
	m := NewMatcher(nil, []string{"*.h", "!config.h"})
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if !m.Match("/project/util.h") {
		t.Error("expected util.h to be ignored")
	}
	if m.Match("/project/config.h") {
		t.Error("expected config.h to NOT be ignored (negation)")
	}
}

func TestMatcherIgnoresRootComponents(t *testing.T) {
	root := filepath.Join(t.TempDir(), "build")
	m := NewMatcher([]string{root}, []string{"build"})
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if m.Match(filepath.Join(root, "main.c")) {
		t.Error("expected pattern to apply below the root only")
	}
	if !m.Match(filepath.Join(root, "build", "main.c")) {
		t.Error("expected nested build directory to be ignored")
	}
}

func TestMatcherLoadsGitIgnore(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		".gitignore":     "*.o\nout/\n# comment\n\n!keep.o\n",
		"lib/.gitignore": "gen_*.c\n",
	})

	m := NewMatcher([]string{tmpDir}, nil)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	cases := map[string]bool{
		"main.o":          true,
		"keep.o":          false,
		"out/shell.c":     true,
		"main.c":          false,
		"lib/gen_table.c": true,
		"gen_table.c":     false, // rule is scoped to lib/
	}
	for rel, want := range cases {
		if got := m.Match(filepath.Join(tmpDir, rel)); got != want {
			t.Errorf("Match(%s) = %v, want %v", rel, got, want)
		}
	}
}

func TestDiscoverSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/shell.c":       "int main(void) { return 0; }",
		"src/shell.h":       "#define MAX 1",
		"src/parser.C":      "int x;",
		"README.md":         "# shell",
		"build/gen.c":       "int y;",
		".git/hooks/x.c":    "int z;",
		"include/builtin.h": "void cd(void);",
	})

	got, err := Discover(context.Background(), root, Options{Exclude: []string{"**/build/**"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "include/builtin.h"),
		filepath.Join(root, "src/parser.C"),
		filepath.Join(root, "src/shell.c"),
		filepath.Join(root, "src/shell.h"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscoverCustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.c":   "",
		"b.cpp": "",
		"c.h":   "",
	})

	got, err := Discover(context.Background(), root, Options{Extensions: []string{".cpp"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "b.cpp" {
		t.Errorf("expected only b.cpp, got %v", got)
	}
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	got, err := Discover(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no files, got %v", got)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"notes.txt": "TODO"})
	path := filepath.Join(root, "notes.txt")

	got, err := Discover(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{path}) {
		t.Errorf("expected [%s], got %v", path, got)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestDiscoverCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.c": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Discover(ctx, root, Options{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]string{"src/a.c", "docs/readme.md", "build/b.c", "inc/c.h"},
		Options{Exclude: []string{"**/build/**"}})
	want := []string{"src/a.c", "inc/c.h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}
