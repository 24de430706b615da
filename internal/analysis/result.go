package analysis

import (
	"sort"

	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/metrics"
)

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	Path     string            `json:"path" yaml:"path" toml:"path"`
	Findings []finding.Finding `json:"findings" yaml:"findings" toml:"findings"`
	Metrics  metrics.Metrics   `json:"metrics" yaml:"metrics" toml:"metrics"`
}

// TopFile ranks a file by its code size.
type TopFile struct {
	Path          string `json:"path" yaml:"path" toml:"path"`
	CodeLines     int    `json:"code_lines" yaml:"code_lines" toml:"code_lines"`
	FunctionCount int    `json:"function_count" yaml:"function_count" toml:"function_count"`
}

// ProjectResult aggregates the analysis of a set of files. Files keeps the
// order the files were given in; files that could not be read appear only in
// Failures and do not count towards Totals.
type ProjectResult struct {
	Root     string            `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty"`
	Files    []FileResult      `json:"files" yaml:"files" toml:"files"`
	Failures []finding.Finding `json:"failures,omitempty" yaml:"failures,omitempty" toml:"failures,omitempty"`
	Totals   metrics.Metrics   `json:"totals" yaml:"totals" toml:"totals"`
	TopFiles []TopFile         `json:"top_files" yaml:"top_files" toml:"top_files"`
}

// Findings returns every finding of the project, file by file, followed by
// the input failures.
func (p *ProjectResult) Findings() []finding.Finding {
	var out []finding.Finding
	for _, f := range p.Files {
		out = append(out, f.Findings...)
	}
	return append(out, p.Failures...)
}

// AverageCodeLines returns the mean code lines per analyzed file.
func (p *ProjectResult) AverageCodeLines() float64 {
	if len(p.Files) == 0 {
		return 0
	}
	return float64(p.Totals.CodeLines) / float64(len(p.Files))
}

// AverageFunctions returns the mean function count per analyzed file.
func (p *ProjectResult) AverageFunctions() float64 {
	if len(p.Files) == 0 {
		return 0
	}
	return float64(p.Totals.FunctionCount) / float64(len(p.Files))
}

// RankFiles returns up to n files ordered by code lines, largest first. Ties
// are broken by path so the ranking is stable across runs.
func RankFiles(files []FileResult, n int) []TopFile {
	ranked := make([]TopFile, len(files))
	for i, f := range files {
		ranked[i] = TopFile{Path: f.Path, CodeLines: f.Metrics.CodeLines, FunctionCount: f.Metrics.FunctionCount}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CodeLines != ranked[j].CodeLines {
			return ranked[i].CodeLines > ranked[j].CodeLines
		}
		return ranked[i].Path < ranked[j].Path
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
