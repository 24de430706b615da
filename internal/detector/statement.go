package detector

import (
	"regexp"
	"strings"

	"github.com/imyousuf/CodeSentry/internal/source"
)

var leadingIf = regexp.MustCompile(`^\s*if\s*\(`)

// statementEnd returns the offset just past the first ';' at or after from,
// or -1 when the statement never ends.
func statementEnd(code string, from int) int {
	i := strings.IndexByte(code[from:], ';')
	if i < 0 {
		return -1
	}
	return from + i + 1
}

// nextCondition returns the parenthesized condition of the if statement that
// starts right at offset (after whitespace). ok is false when the next
// statement is something else.
func nextCondition(code string, offset int) (cond string, ok bool) {
	loc := leadingIf.FindStringIndex(code[offset:])
	if loc == nil {
		return "", false
	}
	open := offset + loc[1]
	end := source.FindMatchingDelim(code, open, '(', ')')
	return strings.TrimSuffix(code[open:end], ")"), true
}

// insideCondition reports whether the expression starting at offset sits
// directly in the parentheses of an if or while, as in
// "if ((fd = open(p, 0)) < 0)".
func insideCondition(code string, offset int) bool {
	i := offset - 1
	sawParen := false
	for i >= 0 {
		switch c := code[i]; {
		case c == '(':
			sawParen = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			if !sawParen {
				return false
			}
			word := precedingWord(code, i+1)
			return word == "if" || word == "while"
		}
		i--
	}
	return false
}

func precedingWord(code string, end int) string {
	start := end
	for start > 0 && isWordByte(code[start-1]) {
		start--
	}
	return code[start:end]
}

// hasWordPrefix reports whether s starts with the identifier w.
func hasWordPrefix(s, w string) bool {
	return strings.HasPrefix(s, w) && (len(s) == len(w) || !isWordByte(s[len(w)]))
}

// containsWord reports whether w occurs in s as a whole identifier.
func containsWord(s, w string) bool {
	if w == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(s[from:], w)
		if i < 0 {
			return false
		}
		i += from
		before := i == 0 || !isWordByte(s[i-1])
		after := i+len(w) == len(s) || !isWordByte(s[i+len(w)])
		if before && after {
			return true
		}
		from = i + 1
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// alternation builds a regexp alternation group matching any of names literally.
func alternation(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return "(" + strings.Join(quoted, "|") + ")"
}
