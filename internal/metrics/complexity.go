package metrics

import (
	"regexp"

	"github.com/imyousuf/CodeSentry/internal/source"
)

// CyclomaticComplexityCalculator estimates cyclomatic complexity using regex-based
// branch counting. The baseline complexity is 1; each branch keyword adds 1.
type CyclomaticComplexityCalculator struct{}

var branchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\belse\b`),
	regexp.MustCompile(`\bcase\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bwhile\b`),
	regexp.MustCompile(`\bdo\b`),
	regexp.MustCompile(`&&`),
	regexp.MustCompile(`\|\|`),
	regexp.MustCompile(`\?`),
}

func (c *CyclomaticComplexityCalculator) Calculate(t *source.Text) map[MetricType]int {
	complexity := 1 // baseline
	text := t.Code()
	for _, p := range branchPatterns {
		complexity += len(p.FindAllStringIndex(text, -1))
	}
	return map[MetricType]int{CyclomaticComplexity: complexity}
}
