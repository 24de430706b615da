// Package report renders analysis results as text, JSON, YAML, TOML or SARIF.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/imyousuf/CodeSentry/internal/analysis"
)

// Format names an output format.
type Format string

const (
	Text  Format = "text"
	JSON  Format = "json"
	YAML  Format = "yaml"
	TOML  Format = "toml"
	SARIF Format = "sarif"
)

// Formats lists every supported format.
var Formats = []Format{Text, JSON, YAML, TOML, SARIF}

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q (supported: %s)", s, FormatNames())
}

// FormatNames returns the supported formats as a comma separated list.
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Rule describes a detector for formats that carry rule metadata.
type Rule struct {
	ID          string
	Description string
}

// Options controls rendering.
type Options struct {
	Format Format
	// Color enables ANSI styling in the text format.
	Color bool
	// Rules describes the detectors that ran, in report order.
	Rules []Rule
}

// Write renders pr to w in the requested format.
func Write(w io.Writer, pr *analysis.ProjectResult, opts Options) error {
	switch opts.Format {
	case Text, "":
		return writeText(w, pr, opts.Color)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pr)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pr); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case TOML:
		if err := toml.NewEncoder(w).Encode(pr); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	case SARIF:
		return writeSARIF(w, pr, opts)
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}
