// Package source holds the in-memory view of one analyzed file and the lexical
// helpers the detectors share: the line index, the brace scanner and the
// function-header scan.
package source

import (
	"fmt"
	"sort"
	"strings"
)

// Text is the immutable content of one file plus a precomputed line-start index.
type Text struct {
	// Path identifies the file in findings. It may be empty.
	Path string

	content string
	code    string
	starts  []int
	lines   []string
}

// New builds a Text from raw file content. The code view equals the content.
func New(path string, content []byte) *Text {
	s := string(content)
	return &Text{
		Path:    path,
		content: s,
		code:    s,
		starts:  lineStarts(s),
		lines:   strings.Split(s, "\n"),
	}
}

// NewMasked builds a Text whose code view has comments and literals blanked
// out by MaskLiterals. Line numbers and offsets are identical in both views.
func NewMasked(path string, content []byte) (*Text, error) {
	masked, err := MaskLiterals(content)
	if err != nil {
		return nil, fmt.Errorf("mask %s: %w", path, err)
	}
	if len(masked) != len(content) {
		return nil, fmt.Errorf("mask %s: length changed from %d to %d", path, len(content), len(masked))
	}
	t := New(path, content)
	t.code = string(masked)
	return t, nil
}

func lineStarts(s string) []int {
	starts := make([]int, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Content returns the raw file content.
func (t *Text) Content() string { return t.content }

// Code returns the view structural detectors scan: the raw content, or the
// masked content when the Text was built with NewMasked.
func (t *Text) Code() string { return t.code }

// LineCount is the number of newline characters plus one.
func (t *Text) LineCount() int { return len(t.starts) }

// Lines returns the raw content split on newlines. The slice is shared and
// must not be modified.
func (t *Text) Lines() []string { return t.lines }

// LineNumberAt maps a byte offset to its 1-based line number: the count of
// newlines before the offset, plus one.
func (t *Text) LineNumberAt(offset int) int {
	if offset <= 0 {
		return 1
	}
	// First line start strictly after offset; its index is the line number.
	return sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > offset })
}
