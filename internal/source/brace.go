package source

// FindMatchingClose scans content from start, which must sit just after an
// opening '{', and returns the offset just past the '}' that closes it.
//
// The scan is purely lexical: braces inside string literals, character
// literals and comments are counted like any other. When the braces never
// balance the result is len(content), meaning the body runs to end of input.
// Callers treat that as a truncated span, not an error.
func FindMatchingClose(content string, start int) int {
	return FindMatchingDelim(content, start, '{', '}')
}

// FindMatchingDelim is FindMatchingClose for an arbitrary delimiter pair.
func FindMatchingDelim(content string, start int, open, close byte) int {
	if start < 0 {
		start = 0
	}
	depth := 1
	for i := start; i < len(content); i++ {
		switch content[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(content)
}
