package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/imyousuf/CodeSentry/internal/analysis"
	"github.com/imyousuf/CodeSentry/internal/finding"
)

const (
	toolName       = "CodeSentry"
	informationURI = "https://github.com/imyousuf/CodeSentry"
)

func sarifLevel(s finding.Severity) string {
	switch s {
	case finding.Error:
		return "error"
	case finding.Warning:
		return "warning"
	default:
		return "note"
	}
}

func writeSARIF(w io.Writer, pr *analysis.ProjectResult, opts Options) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("create sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, informationURI)
	known := make(map[string]bool)
	for _, r := range opts.Rules {
		run.AddRule(r.ID).WithDescription(r.Description)
		known[r.ID] = true
	}

	for _, f := range pr.Findings() {
		if f.Rule != "" && !known[f.Rule] {
			// Rules outside the detector set, such as external tools.
			run.AddRule(f.Rule).WithDescription(f.Rule)
			known[f.Rule] = true
		}

		physical := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(filepath.ToSlash(f.File)))
		if f.HasLine() {
			physical = physical.WithRegion(sarif.NewRegion().WithStartLine(f.Line))
		}
		location := sarif.NewLocation().WithPhysicalLocation(physical)

		result := sarif.NewRuleResult(f.Rule).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(sarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	return report.PrettyWrite(w)
}
