// Package finding defines the value every detector emits.
package finding

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity ranks a finding.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns the upper-case severity name.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity accepts a severity name in any case. "warn" is accepted for WARNING.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return Info, nil
	case "WARNING", "WARN":
		return Warning, nil
	case "ERROR":
		return Error, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Finding is one reported issue. Line is 1-based; zero means the finding
// applies to the whole file.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity" toml:"severity"`
	Rule     string   `json:"rule" yaml:"rule" toml:"rule"`
	Message  string   `json:"message" yaml:"message" toml:"message"`
	File     string   `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
}

// HasLine reports whether the finding points at a specific line.
func (f Finding) HasLine() bool { return f.Line > 0 }

// Location renders "file:line", "file" or "" depending on what is known.
func (f Finding) Location() string {
	switch {
	case f.File != "" && f.HasLine():
		return f.File + ":" + strconv.Itoa(f.Line)
	case f.File != "":
		return f.File
	default:
		return ""
	}
}

// String renders the finding without colour.
func (f Finding) String() string {
	if loc := f.Location(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", f.Severity, loc, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Severity, f.Message)
}

// Count returns how many findings have each severity.
func Count(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// AtLeast reports whether any finding is at or above min.
func AtLeast(findings []Finding, min Severity) bool {
	for _, f := range findings {
		if f.Severity >= min {
			return true
		}
	}
	return false
}
