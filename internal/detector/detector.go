// Package detector implements the lexical checks run against each source file.
//
// Every detector is a pure function of a source.Text: no shared state, no
// ordering between detectors. They trade precision for simplicity and work on
// raw (or literal-masked) text with regular expressions and brace matching,
// so both false positives and false negatives are expected.
package detector

import (
	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/source"
)

// Detector names, used in findings, configuration and SARIF rule ids.
const (
	FileLengthName        = "file_length"
	FunctionLengthName    = "function_length"
	LineLengthName        = "line_length"
	TodoCommentName       = "todo_comment"
	NamingName            = "naming"
	ResourceLifecycleName = "resource_lifecycle"
	UncheckedReturnName   = "unchecked_return"
)

// Detector scans one file and reports what it finds.
type Detector interface {
	// Name returns the stable identifier of the detector.
	Name() string
	// Description is a one-line summary for listings and SARIF rules.
	Description() string
	// Detect returns the findings for t, in source order.
	Detect(t *source.Text) []finding.Finding
}

// Policy holds the thresholds and name lists the detectors enforce.
type Policy struct {
	MaxLineLength    int
	MaxFileLines     int
	MaxFunctionLines int
	FunctionPattern  string
	MacroPattern     string
	NamingExempt     []string
	Allocators       []string
	Releasers        []string
	Syscalls         []string
	// OwnershipEscape suppresses a leak warning for NAME when NAME_ or _NAME
	// appears anywhere in the file, taken as a hint that ownership moved.
	OwnershipEscape bool
}

const (
	DefaultFunctionPattern = `^[a-z][a-z0-9_]*$`
	DefaultMacroPattern    = `^[A-Z][A-Z0-9_]*$`
)

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MaxLineLength:    80,
		MaxFileLines:     500,
		MaxFunctionLines: 50,
		FunctionPattern:  DefaultFunctionPattern,
		MacroPattern:     DefaultMacroPattern,
		NamingExempt:     []string{"main"},
		Allocators:       []string{"malloc", "calloc", "realloc", "strdup"},
		Releasers:        []string{"free"},
		Syscalls:         []string{"open", "close", "read", "write", "fork", "exec", "dup", "dup2"},
		OwnershipEscape:  true,
	}
}

func newFinding(t *source.Text, rule string, sev finding.Severity, line int, msg string) finding.Finding {
	return finding.Finding{
		Severity: sev,
		Rule:     rule,
		Message:  msg,
		File:     t.Path,
		Line:     line,
	}
}
