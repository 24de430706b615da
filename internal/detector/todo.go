package detector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/source"
)

var todoPattern = regexp.MustCompile(`(?i)TODO|FIXME|XXX`)

// TodoComment reports lines carrying TODO, FIXME or XXX markers.
type TodoComment struct{}

func (d *TodoComment) Name() string { return TodoCommentName }
func (d *TodoComment) Description() string { return "TODO, FIXME and XXX markers" }

func (d *TodoComment) Detect(t *source.Text) []finding.Finding {
	var out []finding.Finding
	for i, line := range t.Lines() {
		if todoPattern.MatchString(line) {
			out = append(out, newFinding(t, d.Name(), finding.Info, i+1,
				fmt.Sprintf("Found TODO comment: '%s'", strings.TrimSpace(line))))
		}
	}
	return out
}
