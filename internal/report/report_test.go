package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/imyousuf/CodeSentry/internal/analysis"
	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/metrics"
)

func sampleProject() *analysis.ProjectResult {
	shell := analysis.FileResult{
		Path: "src/shell.c",
		Findings: []finding.Finding{
			{Severity: finding.Warning, Rule: "naming", Message: "Function 'doThing' should use snake_case", File: "src/shell.c", Line: 3},
			{Severity: finding.Warning, Rule: "file_length", Message: "File is too long (501 lines)", File: "src/shell.c"},
		},
		Metrics: metrics.Metrics{TotalLines: 501, CodeLines: 480, CommentLines: 11, BlankLines: 10, FunctionCount: 4, VariableCount: 9, Complexity: 12},
	}
	util := analysis.FileResult{
		Path:     "src/util.h",
		Findings: []finding.Finding{},
		Metrics:  metrics.Metrics{TotalLines: 10, CodeLines: 8, BlankLines: 2, FunctionCount: 0, Complexity: 1},
	}
	pr := &analysis.ProjectResult{
		Files: []analysis.FileResult{shell, util},
		Failures: []finding.Finding{
			{Severity: finding.Error, Rule: analysis.InputRule, Message: "Cannot analyze file: permission denied", File: "src/secret.c"},
		},
	}
	for _, f := range pr.Files {
		pr.Totals.Add(f.Metrics)
	}
	pr.TopFiles = analysis.RankFiles(pr.Files, 5)
	return pr
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "JSON", " yaml ", "toml", "sarif"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text, json, yaml, toml, sarif")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleProject(), Options{Format: Text}))
	out := buf.String()

	for _, want := range []string{
		"Found 3 source files to analyze",
		"=== Analyzing src/shell.c ===",
		"WARNING: src/shell.c:3: Function 'doThing' should use snake_case",
		"WARNING: src/shell.c: File is too long (501 lines)",
		"Comment lines: 11 (2.2%)",
		"Complexity: 12",
		"=== Analyzing src/util.h ===\nNo issues found",
		"ERROR: src/secret.c: Cannot analyze file: permission denied",
		"Total files: 2",
		"Total lines of code: 488",
		"Average code lines per file: 244.0",
		"Average functions per file: 2.0",
		"Findings: ERROR 1, WARNING 2, INFO 0",
		"src/shell.c: 480 lines of code, 4 functions\nsrc/util.h: 8 lines of code, 0 functions",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "no colour codes without Color")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleProject(), Options{Format: JSON}))

	var got analysis.ProjectResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleProject(), &got)
	assert.Contains(t, buf.String(), `"severity": "WARNING"`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleProject(), Options{Format: YAML}))
	assert.Contains(t, buf.String(), "severity: WARNING")

	var got analysis.ProjectResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 488, got.Totals.CodeLines)
	require.Len(t, got.Files, 2)
	assert.Equal(t, finding.Warning, got.Files[0].Findings[0].Severity)
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleProject(), Options{Format: TOML}))
	assert.Contains(t, buf.String(), "WARNING")

	var got analysis.ProjectResult
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, len(got.Files))
	assert.Equal(t, "src/secret.c", got.Failures[0].File)
}

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Format: SARIF, Rules: []Rule{
		{ID: "naming", Description: "Function and macro naming conventions"},
		{ID: "file_length", Description: "Overly long files"},
	}}
	require.NoError(t, Write(&buf, sampleProject(), opts))

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID  string `json:"ruleId"`
				Level   string `json:"level"`
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region *struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "CodeSentry", run.Tool.Driver.Name)

	var ruleIDs []string
	for _, r := range run.Tool.Driver.Rules {
		ruleIDs = append(ruleIDs, r.ID)
	}
	assert.Equal(t, []string{"naming", "file_length", analysis.InputRule}, ruleIDs)

	require.Len(t, run.Results, 3)
	first := run.Results[0]
	assert.Equal(t, "naming", first.RuleID)
	assert.Equal(t, "warning", first.Level)
	assert.Equal(t, "src/shell.c", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	require.NotNil(t, first.Locations[0].PhysicalLocation.Region)
	assert.Equal(t, 3, first.Locations[0].PhysicalLocation.Region.StartLine)

	assert.Nil(t, run.Results[1].Locations[0].PhysicalLocation.Region, "file-level findings carry no region")
	assert.Equal(t, "error", run.Results[2].Level)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleProject(), Options{Format: "xml"})
	require.Error(t, err)
}

func TestWriteFileText(t *testing.T) {
	var buf bytes.Buffer
	WriteFileText(&buf, sampleProject().Files[0], false)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\n=== Analyzing src/shell.c ==="))
	assert.Contains(t, out, "Metrics for src/shell.c:")
	assert.NotContains(t, out, "Project Summary")
}
