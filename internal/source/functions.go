package source

import (
	"regexp"
	"strings"
)

// FunctionHeader recognizes a function definition: type-like words, the
// name, a parenthesized argument list and the opening brace. Control
// statements such as "else if (x) {" match as well.
var FunctionHeader = regexp.MustCompile(`(?:\w+\s+)+(\w+)\s*\([^)]*\)\s*\{`)

// FunctionSpan is a function body located by FunctionHeader and the brace scanner.
type FunctionSpan struct {
	Name string
	// HeaderStart is the offset where the header match begins.
	HeaderStart int
	// BodyStart is the offset just after the opening brace.
	BodyStart int
	// BodyEnd is the offset just past the closing brace, or len(code) when
	// the body never closes.
	BodyEnd int

	lines int
}

// LineCount is the number of newlines inside the body, plus one.
func (s FunctionSpan) LineCount() int { return s.lines }

// Functions returns every function span found in code, in source order.
func Functions(code string) []FunctionSpan {
	var spans []FunctionSpan
	for _, m := range FunctionHeader.FindAllStringSubmatchIndex(code, -1) {
		start := m[1]
		end := FindMatchingClose(code, start)
		spans = append(spans, FunctionSpan{
			Name:        code[m[2]:m[3]],
			HeaderStart: m[0],
			BodyStart:   start,
			BodyEnd:     end,
			lines:       strings.Count(code[start:end], "\n") + 1,
		})
	}
	return spans
}
