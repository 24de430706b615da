package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/imyousuf/CodeSentry/internal/analysis"
	"github.com/imyousuf/CodeSentry/internal/finding"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func paint(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

func writeHeader(w io.Writer, title string, color bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, paint(headerStyle, "=== "+title+" ===", color))
}

// WriteFileText renders one file's findings and metrics.
func WriteFileText(w io.Writer, res analysis.FileResult, color bool) {
	writeHeader(w, "Analyzing "+res.Path, color)
	if len(res.Findings) == 0 {
		fmt.Fprintln(w, paint(okStyle, "No issues found", color))
	}
	for _, f := range res.Findings {
		fmt.Fprintln(w, finding.Render(f, color))
	}

	m := res.Metrics
	fmt.Fprintln(w)
	fmt.Fprintln(w, paint(okStyle, "Metrics for "+res.Path+":", color))
	fmt.Fprintf(w, "  Total lines: %d\n", m.TotalLines)
	fmt.Fprintf(w, "  Code lines: %d\n", m.CodeLines)
	fmt.Fprintf(w, "  Comment lines: %d (%.1f%%)\n", m.CommentLines, m.CommentRatio())
	fmt.Fprintf(w, "  Blank lines: %d\n", m.BlankLines)
	fmt.Fprintf(w, "  Functions: %d\n", m.FunctionCount)
	fmt.Fprintf(w, "  Variables: %d\n", m.VariableCount)
	fmt.Fprintf(w, "  Complexity: %d\n", m.Complexity)
}

func writeText(w io.Writer, pr *analysis.ProjectResult, color bool) error {
	total := len(pr.Files) + len(pr.Failures)
	fmt.Fprintln(w, paint(okStyle, fmt.Sprintf("Found %d source files to analyze", total), color))

	for _, res := range pr.Files {
		WriteFileText(w, res, color)
	}

	if len(pr.Failures) > 0 {
		writeHeader(w, "Files that could not be analyzed", color)
		for _, f := range pr.Failures {
			fmt.Fprintln(w, finding.Render(f, color))
		}
	}

	writeHeader(w, "Project Summary", color)
	fmt.Fprintf(w, "Total files: %d\n", len(pr.Files))
	fmt.Fprintf(w, "Total lines of code: %d\n", pr.Totals.CodeLines)
	fmt.Fprintf(w, "Total functions: %d\n", pr.Totals.FunctionCount)
	fmt.Fprintf(w, "Average code lines per file: %.1f\n", pr.AverageCodeLines())
	fmt.Fprintf(w, "Average functions per file: %.1f\n", pr.AverageFunctions())
	counts := finding.Count(pr.Findings())
	fmt.Fprintf(w, "Findings: %s %d, %s %d, %s %d\n",
		finding.Format(finding.Error, color), counts[finding.Error],
		finding.Format(finding.Warning, color), counts[finding.Warning],
		finding.Format(finding.Info, color), counts[finding.Info])

	if len(pr.TopFiles) > 0 {
		writeHeader(w, "Files with the most code", color)
		for _, tf := range pr.TopFiles {
			fmt.Fprintf(w, "%s: %d lines of code, %d functions\n", tf.Path, tf.CodeLines, tf.FunctionCount)
		}
	}
	return nil
}
