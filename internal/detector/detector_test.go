package detector

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/source"
)

func text(content string) *source.Text {
	return source.New("test.c", []byte(content))
}

func messages(fs []finding.Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Message
	}
	return out
}

func withMessage(fs []finding.Finding, prefix string) []finding.Finding {
	var out []finding.Finding
	for _, f := range fs {
		if strings.HasPrefix(f.Message, prefix) {
			out = append(out, f)
		}
	}
	return out
}

func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString("int v")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString("_line;\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func TestFileLength(t *testing.T) {
	d := &FileLength{Max: 500}

	assert.Empty(t, d.Detect(text(numberedLines(500))))

	got := d.Detect(text(numberedLines(501)))
	want := []finding.Finding{{
		Severity: finding.Warning,
		Rule:     FileLengthName,
		Message:  "File is too long (501 lines)",
		File:     "test.c",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FileLength mismatch (-want +got):\n%s", diff)
	}
}

func TestCountLinesIsNewlinesPlusOne(t *testing.T) {
	for _, content := range []string{"a", "a\nb", "a\nb\n", "\n\n"} {
		assert.Equal(t, strings.Count(content, "\n")+1, CountLines(text(content)), "content %q", content)
	}
}

func TestLineLength(t *testing.T) {
	d := &LineLength{Max: 80}

	got := d.Detect(text(strings.Repeat("x", 81)))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, "Line exceeds 80 characters (81)", got[0].Message)
	assert.Equal(t, finding.Warning, got[0].Severity)

	assert.Empty(t, d.Detect(text(strings.Repeat("x", 80)+"\r\n")), "CR is part of the line ending")
	assert.Empty(t, d.Detect(text(strings.Repeat("é", 80))), "length counts characters, not bytes")

	got = d.Detect(text("short\n" + strings.Repeat("y", 90) + "\nshort"))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Line)
}

func TestFunctionLength(t *testing.T) {
	d := &FunctionLength{Max: 50}

	body := strings.Repeat("    step();\n", 48)
	short := "int short_fn(void) {\n" + body + "}\n"
	assert.Empty(t, d.Detect(text(short)), "48 statements + braces span exactly 50 lines")

	long := "/* header */\nint long_fn(void)\n{\n" + body + "    step();\n}\n"
	got := d.Detect(text(long))
	require.Len(t, got, 1)
	assert.Equal(t, "Function 'long_fn' is too long (51 lines)", got[0].Message)
	assert.Equal(t, 3, got[0].Line, "reported at the opening brace")
}

func TestFunctionLengthUnterminatedBody(t *testing.T) {
	d := &FunctionLength{Max: 2}
	got := d.Detect(text("void f(void) {\n a();\n b();\n"))
	require.Len(t, got, 1)
	assert.Equal(t, "Function 'f' is too long (4 lines)", got[0].Message)
}

func TestTodoComment(t *testing.T) {
	d := &TodoComment{}
	got := d.Detect(text("int a; // todo: rename\nint b;\n  /* FIXME later */  \n// xxx\n"))
	assert.Equal(t, []string{
		"Found TODO comment: 'int a; // todo: rename'",
		"Found TODO comment: '/* FIXME later */'",
		"Found TODO comment: '// xxx'",
	}, messages(got))
	assert.Equal(t, []int{1, 3, 4}, []int{got[0].Line, got[1].Line, got[2].Line})
	assert.Equal(t, finding.Info, got[0].Severity)
}

func TestNaming(t *testing.T) {
	d, err := NewNaming(DefaultFunctionPattern, DefaultMacroPattern, []string{"main"})
	require.NoError(t, err)

	src := `#define MAX_LEN 10
#define maxCount 3
int doThing(int a) {
    return a;
}
int do_thing(int a) {
    return a;
}
int main(void) {
    return 0;
}
`
	got := d.Detect(text(src))
	assert.Equal(t, []string{
		"Function 'doThing' should use snake_case",
		"Constant 'maxCount' should use UPPER_CASE",
	}, messages(got))
	assert.Equal(t, 3, got[0].Line)
	assert.Equal(t, 2, got[1].Line)
}

func TestNamingMainIsAlwaysExempt(t *testing.T) {
	d, err := NewNaming(`^[A-Z]\w*$`, DefaultMacroPattern, []string{"main"})
	require.NoError(t, err)
	got := d.Detect(text("int main(int argc, char **argv) {\n}\nint helper(void) {\n}\n"))
	assert.Equal(t, []string{"Function 'helper' should use the pattern ^[A-Z]\\w*$"}, messages(got))
}

func TestNamingInvalidPattern(t *testing.T) {
	_, err := NewNaming("([", DefaultMacroPattern, nil)
	assert.Error(t, err)
}

func newLifecycle(t *testing.T) *ResourceLifecycle {
	t.Helper()
	d, err := NewResourceLifecycle([]string{"allocate"}, []string{"release"}, true)
	require.NoError(t, err)
	return d
}

func TestResourceLifecycleReleased(t *testing.T) {
	got := newLifecycle(t).Detect(text("buf = allocate(10); release(buf);"))
	assert.Empty(t, withMessage(got, "Potential memory leak"))
}

func TestResourceLifecycleLeak(t *testing.T) {
	got := withMessage(newLifecycle(t).Detect(text("buf = allocate(10);")), "Potential memory leak")
	require.Len(t, got, 1)
	assert.Equal(t, "Potential memory leak: 'buf' allocated but might not be freed", got[0].Message)
	assert.Equal(t, finding.Warning, got[0].Severity)
	assert.Equal(t, 1, got[0].Line)
}

func TestResourceLifecycleOwnershipEscape(t *testing.T) {
	src := "buf = allocate(10);\nif (!buf) return;\nholder->owned_buf = buf;\n"
	got := newLifecycle(t).Detect(text(src))
	assert.Empty(t, got)

	strict, err := NewResourceLifecycle([]string{"allocate"}, []string{"release"}, false)
	require.NoError(t, err)
	assert.Len(t, withMessage(strict.Detect(text(src)), "Potential memory leak"), 1)
}

func TestResourceLifecycleOneLeakPerName(t *testing.T) {
	src := "p = allocate(1);\nif (!p) return;\np = allocate(2);\nif (p == NULL) return;\n"
	got := newLifecycle(t).Detect(text(src))
	assert.Equal(t, []string{"Potential memory leak: 'p' allocated but might not be freed"}, messages(got))
}

func TestResourceLifecycleUncheckedAllocation(t *testing.T) {
	d, err := NewResourceLifecycle([]string{"malloc"}, []string{"free"}, true)
	require.NoError(t, err)

	tests := []struct {
		name      string
		src       string
		unchecked bool
	}{
		{name: "negation check", src: "a = malloc(4);\nif (!a) return;\nfree(a);"},
		{name: "null comparison", src: "a = malloc(4);\nif ( a == NULL ) { return; }\nfree(a);"},
		{name: "cast", src: "a = (char *)malloc(4);\nif (!a) return;\nfree(a);"},
		{name: "inside condition", src: "if ((a = malloc(4)) == NULL) return;\nfree(a);"},
		{name: "no check", src: "a = malloc(4);\na[0] = 1;\nfree(a);", unchecked: true},
		{name: "check of other variable", src: "a = malloc(4);\nif (!b) return;\nfree(a);", unchecked: true},
		{name: "prefix is not the variable", src: "a = malloc(4);\nif (!ab) return;\nfree(a);", unchecked: true},
		{name: "inverted test", src: "a = malloc(4);\nif (a != NULL) use(a);\nfree(a);", unchecked: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withMessage(d.Detect(text(tt.src)), "Unchecked malloc")
			if !tt.unchecked {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, finding.Error, got[0].Severity)
			assert.Equal(t, "Unchecked malloc of 'a'", got[0].Message)
			assert.Equal(t, 1, got[0].Line)
		})
	}
}

func TestResourceLifecycleNeedsNames(t *testing.T) {
	_, err := NewResourceLifecycle(nil, []string{"free"}, true)
	assert.Error(t, err)
}

func TestUncheckedReturn(t *testing.T) {
	d, err := NewUncheckedReturn(DefaultPolicy().Syscalls)
	require.NoError(t, err)

	got := d.Detect(text(`fd = open("f", 0);`))
	require.Len(t, got, 1)
	assert.Equal(t, "Unchecked system call: 'open' result stored in 'fd'", got[0].Message)
	assert.Equal(t, finding.Warning, got[0].Severity)

	assert.Empty(t, d.Detect(text(`fd = open("f", 0); if (fd < 0) { return -1; }`)))
}

func TestUncheckedReturnCases(t *testing.T) {
	d, err := NewUncheckedReturn(DefaultPolicy().Syscalls)
	require.NoError(t, err)

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "variable on the right of the test",
			src:  "n = read(fd, buf, 4);\nif (-1 == n) fail();",
		},
		{
			name: "assignment inside condition",
			src:  "if ((pid = fork()) < 0) fail();",
		},
		{
			name: "dup2 is its own call",
			src:  "r = dup2(a, b);\nclose(a);",
			want: []string{"Unchecked system call: 'dup2' result stored in 'r'"},
		},
		{
			name: "similar names are not calls",
			src:  "n = readline(fp);\nx = opendir(p);",
		},
		{
			name: "test of a different variable",
			src:  "n = write(fd, b, 1);\nif (fd) x();",
			want: []string{"Unchecked system call: 'write' result stored in 'n'"},
		},
		{
			name: "test on a later statement",
			src:  "n = write(fd, b, 1);\nlog();\nif (n < 0) x();",
			want: []string{"Unchecked system call: 'write' result stored in 'n'"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messages(d.Detect(text(tt.src)))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistrySelect(t *testing.T) {
	r, err := New(DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, StockNames, r.Names())

	all, err := r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(StockNames))

	picked, err := r.Select([]string{UncheckedReturnName, LineLengthName})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, LineLengthName, picked[0].Name(), "registration order wins")

	_, err = r.Select([]string{"line_lengt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "line_length"`)
}

func TestNewRejectsBadPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.MacroPattern = "(unclosed"
	_, err := New(p)
	assert.Error(t, err)
}

func TestDetectorsArePure(t *testing.T) {
	r, err := New(DefaultPolicy())
	require.NoError(t, err)
	src := text("int doThing(void) {\n  p = malloc(3);\n  fd = open(\"x\", 0);\n}\n// TODO\n")
	for _, d := range r.All() {
		first := d.Detect(src)
		second := d.Detect(src)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s not deterministic (-first +second):\n%s", d.Name(), diff)
		}
		for _, f := range first {
			if f.HasLine() {
				assert.True(t, f.Line >= 1 && f.Line <= src.LineCount(), "%s line %d out of range", d.Name(), f.Line)
			}
		}
	}
}
