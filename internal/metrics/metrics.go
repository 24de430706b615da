// Package metrics computes size and complexity metrics for C source files.
package metrics

import (
	"github.com/imyousuf/CodeSentry/internal/source"
)

// MetricType identifies a specific code metric.
type MetricType string

const (
	TotalLines           MetricType = "total_lines"
	CodeLines            MetricType = "code_lines"
	CommentLines         MetricType = "comment_lines"
	BlankLines           MetricType = "blank_lines"
	FunctionCount        MetricType = "function_count"
	VariableCount        MetricType = "variable_count"
	CyclomaticComplexity MetricType = "cyclomatic_complexity"
)

// Metrics is the typed per-file (or summed per-project) metric record.
// CodeLines is always TotalLines - CommentLines - BlankLines.
type Metrics struct {
	TotalLines    int `json:"total_lines" yaml:"total_lines" toml:"total_lines"`
	CodeLines     int `json:"code_lines" yaml:"code_lines" toml:"code_lines"`
	CommentLines  int `json:"comment_lines" yaml:"comment_lines" toml:"comment_lines"`
	BlankLines    int `json:"blank_lines" yaml:"blank_lines" toml:"blank_lines"`
	FunctionCount int `json:"function_count" yaml:"function_count" toml:"function_count"`
	VariableCount int `json:"variable_count" yaml:"variable_count" toml:"variable_count"`
	Complexity    int `json:"complexity" yaml:"complexity" toml:"complexity"`
}

// Add sums other into m field by field.
func (m *Metrics) Add(other Metrics) {
	m.TotalLines += other.TotalLines
	m.CodeLines += other.CodeLines
	m.CommentLines += other.CommentLines
	m.BlankLines += other.BlankLines
	m.FunctionCount += other.FunctionCount
	m.VariableCount += other.VariableCount
	m.Complexity += other.Complexity
}

// CommentRatio returns the share of comment lines, in percent.
func (m Metrics) CommentRatio() float64 {
	return float64(m.CommentLines) / float64(max(1, m.TotalLines)) * 100
}

// Calculator computes a subset of metrics for a file.
type Calculator interface {
	// Calculate returns metric values for the given source text.
	Calculate(t *source.Text) map[MetricType]int
}

// CompositeCalculator runs multiple calculators and merges their results.
type CompositeCalculator struct {
	calculators []Calculator
}

// NewCompositeCalculator creates a CompositeCalculator with all built-in calculators.
func NewCompositeCalculator() *CompositeCalculator {
	return &CompositeCalculator{
		calculators: []Calculator{
			&LinesOfCodeCalculator{},
			&DeclarationCounter{},
			&CyclomaticComplexityCalculator{},
		},
	}
}

// Calculate runs all calculators and merges results into a single map.
func (c *CompositeCalculator) Calculate(t *source.Text) map[MetricType]int {
	result := make(map[MetricType]int)
	for _, calc := range c.calculators {
		for k, v := range calc.Calculate(t) {
			result[k] = v
		}
	}
	return result
}

var defaultCalculator = NewCompositeCalculator()

// Collect computes every metric for t. It only reads t, so repeated calls
// return equal results.
func Collect(t *source.Text) Metrics {
	return FromMap(defaultCalculator.Calculate(t))
}

// FromMap converts a calculator result into a Metrics record.
func FromMap(m map[MetricType]int) Metrics {
	return Metrics{
		TotalLines:    m[TotalLines],
		CodeLines:     m[CodeLines],
		CommentLines:  m[CommentLines],
		BlankLines:    m[BlankLines],
		FunctionCount: m[FunctionCount],
		VariableCount: m[VariableCount],
		Complexity:    m[CyclomaticComplexity],
	}
}
