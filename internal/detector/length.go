package detector

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/source"
)

// FileLength warns once, at file level, when a file has more than Max lines.
type FileLength struct {
	Max int
}

func (d *FileLength) Name() string { return FileLengthName }
func (d *FileLength) Description() string { return fmt.Sprintf("files longer than %d lines", d.Max) }

func (d *FileLength) Detect(t *source.Text) []finding.Finding {
	n := CountLines(t)
	if n <= d.Max {
		return nil
	}
	return []finding.Finding{
		newFinding(t, d.Name(), finding.Warning, 0, fmt.Sprintf("File is too long (%d lines)", n)),
	}
}

// CountLines is the line count FileLength enforces: newlines plus one.
func CountLines(t *source.Text) int {
	return t.LineCount()
}

// LineLength warns for every line longer than Max characters.
type LineLength struct {
	Max int
}

func (d *LineLength) Name() string { return LineLengthName }
func (d *LineLength) Description() string {
	return fmt.Sprintf("lines longer than %d characters", d.Max)
}

func (d *LineLength) Detect(t *source.Text) []finding.Finding {
	var out []finding.Finding
	for i, line := range t.Lines() {
		n := utf8.RuneCountInString(strings.TrimSuffix(line, "\r"))
		if n > d.Max {
			out = append(out, newFinding(t, d.Name(), finding.Warning, i+1,
				fmt.Sprintf("Line exceeds %d characters (%d)", d.Max, n)))
		}
	}
	return out
}

// FunctionLength warns for function bodies spanning more than Max lines.
type FunctionLength struct {
	Max int
}

func (d *FunctionLength) Name() string { return FunctionLengthName }
func (d *FunctionLength) Description() string {
	return fmt.Sprintf("function bodies longer than %d lines", d.Max)
}

func (d *FunctionLength) Detect(t *source.Text) []finding.Finding {
	var out []finding.Finding
	for _, span := range source.Functions(t.Code()) {
		if n := span.LineCount(); n > d.Max {
			out = append(out, newFinding(t, d.Name(), finding.Warning, t.LineNumberAt(span.BodyStart),
				fmt.Sprintf("Function '%s' is too long (%d lines)", span.Name, n)))
		}
	}
	return out
}
