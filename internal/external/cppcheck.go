// Package external runs third-party checkers over a file and converts their
// diagnostics into findings. A checker that is not installed yields nothing.
package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/imyousuf/CodeSentry/internal/finding"
)

// ErrToolNotFound is returned by Lookup when the checker binary is not on PATH.
var ErrToolNotFound = errors.New("tool not found")

// Rule is the finding rule attached to cppcheck diagnostics.
const Rule = "cppcheck"

// Tool is an external checker run once per file.
type Tool interface {
	Name() string
	// Run checks path and returns its findings. lineCount bounds the line
	// numbers attached to them.
	Run(ctx context.Context, path string, lineCount int) ([]finding.Finding, error)
}

// Cppcheck runs `cppcheck --enable=all --suppress=missingIncludeSystem`.
type Cppcheck struct {
	// Binary is the executable name or path. Empty means "cppcheck".
	Binary string

	log      hclog.Logger
	lookPath func(string) (string, error)
	missing  sync.Once
}

// NewCppcheck creates a cppcheck runner that logs through log.
func NewCppcheck(log hclog.Logger) *Cppcheck {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Cppcheck{log: log.Named("cppcheck"), lookPath: exec.LookPath}
}

func (c *Cppcheck) Name() string { return Rule }

// Lookup resolves the binary, returning ErrToolNotFound when it is absent.
func (c *Cppcheck) Lookup() (string, error) {
	bin := c.Binary
	if bin == "" {
		bin = "cppcheck"
	}
	path, err := c.lookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%s: %w", bin, ErrToolNotFound)
	}
	return path, nil
}

// Run executes cppcheck on path. A missing binary is logged once at debug
// level and produces no findings.
func (c *Cppcheck) Run(ctx context.Context, path string, lineCount int) ([]finding.Finding, error) {
	bin, err := c.Lookup()
	if errors.Is(err, ErrToolNotFound) {
		c.missing.Do(func() {
			c.log.Debug("cppcheck not found, skipping static analysis")
		})
		return nil, nil
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--enable=all", "--suppress=missingIncludeSystem", path)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// cppcheck reports through stderr and exits 0; anything else is a failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("run cppcheck on %s: %w", path, err)
	}

	findings := ParseOutput(path, stderr.Bytes(), lineCount)
	c.log.Debug("cppcheck finished", "file", path, "findings", len(findings))
	return findings, nil
}

var (
	// file:line:col: severity: message
	gccStyle = regexp.MustCompile(`^(.+?):(\d+):(?:\d+:)?\s*(error|warning|style):\s*(.*)$`)
	// [file:line]: (severity) message
	legacyStyle = regexp.MustCompile(`^\[(.+?):(\d+)\]:\s*\((error|warning|style)\)\s*(.*)$`)
)

var cppcheckSeverity = map[string]finding.Severity{
	"error":   finding.Error,
	"warning": finding.Warning,
	"style":   finding.Info,
}

// ParseOutput converts cppcheck diagnostics into findings for path. Lines that
// are not error, warning or style diagnostics are ignored. A line number outside
// 1..lineCount is dropped so the finding becomes file-level.
func ParseOutput(path string, out []byte, lineCount int) []finding.Finding {
	var findings []finding.Finding
	for _, raw := range strings.Split(string(out), "\n") {
		raw = strings.TrimSpace(raw)
		m := gccStyle.FindStringSubmatch(raw)
		if m == nil {
			m = legacyStyle.FindStringSubmatch(raw)
		}
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		if line < 1 || line > lineCount {
			line = 0
		}
		findings = append(findings, finding.Finding{
			Severity: cppcheckSeverity[m[3]],
			Rule:     Rule,
			Message:  strings.TrimSpace(m[4]),
			File:     path,
			Line:     line,
		})
	}
	return findings
}
