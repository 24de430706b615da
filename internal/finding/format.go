package finding

import "github.com/charmbracelet/lipgloss"

// Styles are values; nothing here is mutated after package init.
var severityStyles = map[Severity]lipgloss.Style{
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

// Format returns the display label for a severity, coloured when color is true.
func Format(s Severity, color bool) string {
	label := s.String()
	if !color {
		return label
	}
	style, ok := severityStyles[s]
	if !ok {
		return label
	}
	return style.Render(label)
}

// Render is Finding.String with the severity label passed through Format.
func Render(f Finding, color bool) string {
	label := Format(f.Severity, color)
	if loc := f.Location(); loc != "" {
		return label + ": " + loc + ": " + f.Message
	}
	return label + ": " + f.Message
}
