package detector

import (
	"fmt"
	"regexp"

	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/source"
)

var (
	namedFunctionHeader = regexp.MustCompile(`(\w+)\s+(\w+)\s*\([^)]*\)\s*\{`)
	defineDirective     = regexp.MustCompile(`#\s*define\s+([A-Za-z0-9_]+)`)
)

// Naming checks function names and macro names against two patterns.
type Naming struct {
	function *regexp.Regexp
	macro    *regexp.Regexp
	exempt   map[string]bool
}

// NewNaming compiles the function and macro name patterns. Names listed in
// exempt are never reported as functions.
func NewNaming(functionPattern, macroPattern string, exempt []string) (*Naming, error) {
	fn, err := regexp.Compile(functionPattern)
	if err != nil {
		return nil, fmt.Errorf("function name pattern: %w", err)
	}
	macro, err := regexp.Compile(macroPattern)
	if err != nil {
		return nil, fmt.Errorf("macro name pattern: %w", err)
	}
	d := &Naming{function: fn, macro: macro, exempt: make(map[string]bool, len(exempt))}
	for _, name := range exempt {
		d.exempt[name] = true
	}
	return d, nil
}

func (d *Naming) Name() string { return NamingName }
func (d *Naming) Description() string {
	return fmt.Sprintf("function names matching %s, macro names matching %s", d.function, d.macro)
}

func (d *Naming) Detect(t *source.Text) []finding.Finding {
	code := t.Code()
	var out []finding.Finding
	for _, m := range namedFunctionHeader.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[4]:m[5]]
		if d.exempt[name] || d.function.MatchString(name) {
			continue
		}
		out = append(out, newFinding(t, d.Name(), finding.Warning, t.LineNumberAt(m[0]),
			fmt.Sprintf("Function '%s' should use %s", name, d.convention(d.function, DefaultFunctionPattern, "snake_case"))))
	}
	for _, m := range defineDirective.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		if d.macro.MatchString(name) {
			continue
		}
		out = append(out, newFinding(t, d.Name(), finding.Warning, t.LineNumberAt(m[0]),
			fmt.Sprintf("Constant '%s' should use %s", name, d.convention(d.macro, DefaultMacroPattern, "UPPER_CASE"))))
	}
	return out
}

// convention names the stock patterns and quotes custom ones.
func (d *Naming) convention(re *regexp.Regexp, stock, label string) string {
	if re.String() == stock {
		return label
	}
	return "the pattern " + re.String()
}
