package detector

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/source"
)

// UncheckedReturn warns when the result of a listed call is stored in a
// variable that the next statement does not test.
type UncheckedReturn struct {
	call *regexp.Regexp
}

// NewUncheckedReturn builds the detector for the given call names.
func NewUncheckedReturn(calls []string) (*UncheckedReturn, error) {
	if len(calls) == 0 {
		return nil, errors.New("unchecked return needs at least one call name")
	}
	re, err := regexp.Compile(`\b(\w+)\s*=\s*` + alternation(calls) + `\s*\(`)
	if err != nil {
		return nil, fmt.Errorf("call pattern: %w", err)
	}
	return &UncheckedReturn{call: re}, nil
}

func (d *UncheckedReturn) Name() string { return UncheckedReturnName }
func (d *UncheckedReturn) Description() string {
	return "system call results stored but not tested by the next statement"
}

func (d *UncheckedReturn) Detect(t *source.Text) []finding.Finding {
	code := t.Code()
	var out []finding.Finding
	for _, m := range d.call.FindAllStringSubmatchIndex(code, -1) {
		name, call := code[m[2]:m[3]], code[m[4]:m[5]]
		if insideCondition(code, m[0]) {
			continue
		}
		end := statementEnd(code, m[1])
		if end < 0 {
			continue
		}
		if cond, ok := nextCondition(code, end); ok && containsWord(cond, name) {
			continue
		}
		out = append(out, newFinding(t, d.Name(), finding.Warning, t.LineNumberAt(m[0]),
			fmt.Sprintf("Unchecked system call: '%s' result stored in '%s'", call, name)))
	}
	return out
}
