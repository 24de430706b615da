package metrics

import (
	"regexp"
	"strings"

	"github.com/imyousuf/CodeSentry/internal/source"
)

// LinesOfCodeCalculator counts total lines, blank lines, comment lines, and code lines.
// Every line is classified on its own; block comments spanning lines only count
// where a line starts with "*" or is a complete "/* ... */".
type LinesOfCodeCalculator struct{}

func (c *LinesOfCodeCalculator) Calculate(t *source.Text) map[MetricType]int {
	lines := t.Lines()
	var blank, comment int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			blank++
		case isCommentLine(trimmed):
			comment++
		}
	}

	total := t.LineCount()
	return map[MetricType]int{
		TotalLines:   total,
		BlankLines:   blank,
		CommentLines: comment,
		CodeLines:    total - blank - comment,
	}
}

func isCommentLine(trimmed string) bool {
	if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
		return true
	}
	return strings.HasPrefix(trimmed, "/*") && strings.HasSuffix(trimmed, "*/")
}

var variableDeclaration = regexp.MustCompile(
	`\b(?:int|char|float|double|long|short|unsigned|void|bool|size_t)\s+\**\s*([A-Za-z_]\w*)\s*[;,=\[)]`)

// DeclarationCounter counts function definitions and variable declarations
// in the code view, the same view the function-length detector scans.
type DeclarationCounter struct{}

func (c *DeclarationCounter) Calculate(t *source.Text) map[MetricType]int {
	code := t.Code()
	return map[MetricType]int{
		FunctionCount: len(source.FunctionHeader.FindAllStringIndex(code, -1)),
		VariableCount: len(variableDeclaration.FindAllStringIndex(code, -1)),
	}
}
