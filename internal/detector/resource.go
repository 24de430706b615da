package detector

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/source"
)

// optionalCast lets "p = (char *)malloc(n)" count as an allocation.
const optionalCast = `(?:\([^()]*\)\s*)?`

// ResourceLifecycle pairs allocations with releases across the whole file.
//
// It is flow-insensitive: a variable counts as released if any release call
// names it anywhere in the file, and a null check only counts when it is the
// statement right after the allocation.
type ResourceLifecycle struct {
	alloc   *regexp.Regexp
	release *regexp.Regexp
	escape  bool
}

// NewResourceLifecycle builds the detector for the given allocator and
// releaser function names. escape enables the ownership-transfer heuristic.
func NewResourceLifecycle(allocators, releasers []string, escape bool) (*ResourceLifecycle, error) {
	if len(allocators) == 0 || len(releasers) == 0 {
		return nil, errors.New("resource lifecycle needs at least one allocator and one releaser")
	}
	alloc, err := regexp.Compile(`\b(\w+)\s*=\s*` + optionalCast + alternation(allocators) + `\s*\(`)
	if err != nil {
		return nil, fmt.Errorf("allocator pattern: %w", err)
	}
	release, err := regexp.Compile(`\b` + alternation(releasers) + `\s*\(\s*(\w+)\s*\)`)
	if err != nil {
		return nil, fmt.Errorf("releaser pattern: %w", err)
	}
	return &ResourceLifecycle{alloc: alloc, release: release, escape: escape}, nil
}

func (d *ResourceLifecycle) Name() string { return ResourceLifecycleName }
func (d *ResourceLifecycle) Description() string {
	return "allocations never released, and allocations not followed by a null check"
}

type allocation struct {
	name      string
	allocator string
	start     int
	end       int
}

func (d *ResourceLifecycle) Detect(t *source.Text) []finding.Finding {
	code := t.Code()

	var sites []allocation
	for _, m := range d.alloc.FindAllStringSubmatchIndex(code, -1) {
		sites = append(sites, allocation{
			name:      code[m[2]:m[3]],
			allocator: code[m[4]:m[5]],
			start:     m[0],
			end:       m[1],
		})
	}
	if len(sites) == 0 {
		return nil
	}

	released := make(map[string]bool)
	for _, m := range d.release.FindAllStringSubmatchIndex(code, -1) {
		released[code[m[4]:m[5]]] = true
	}

	var out []finding.Finding
	seen := make(map[string]bool)
	for _, s := range sites {
		if seen[s.name] {
			continue
		}
		seen[s.name] = true
		if released[s.name] || d.escape && ownershipEscapes(code, s.name) {
			continue
		}
		out = append(out, newFinding(t, d.Name(), finding.Warning, t.LineNumberAt(s.start),
			fmt.Sprintf("Potential memory leak: '%s' allocated but might not be freed", s.name)))
	}

	for _, s := range sites {
		if d.nullChecked(code, s) {
			continue
		}
		out = append(out, newFinding(t, d.Name(), finding.Error, t.LineNumberAt(s.start),
			fmt.Sprintf("Unchecked %s of '%s'", s.allocator, s.name)))
	}
	return out
}

// ownershipEscapes is the leak-suppression heuristic: NAME_ or _NAME
// appearing anywhere in the file is read as the value being handed to a
// differently named owner. It is deliberately permissive.
func ownershipEscapes(code, name string) bool {
	return strings.Contains(code, name+"_") || strings.Contains(code, "_"+name)
}

// nullChecked reports whether the allocation is tested for failure: either
// the next statement is "if (!NAME" / "if (NAME == NULL", or the allocation
// itself sits inside an if/while condition.
func (d *ResourceLifecycle) nullChecked(code string, s allocation) bool {
	if insideCondition(code, s.start) {
		return true
	}
	end := statementEnd(code, s.end)
	if end < 0 {
		// No terminating ';': not a complete statement, nothing to judge.
		return true
	}
	cond, ok := nextCondition(code, end)
	if !ok {
		return false
	}
	cond = strings.TrimLeft(cond, " \t\r\n")
	if rest, found := strings.CutPrefix(cond, "!"); found {
		return hasWordPrefix(strings.TrimLeft(rest, " \t\r\n"), s.name)
	}
	if !hasWordPrefix(cond, s.name) {
		return false
	}
	rest := strings.TrimLeft(cond[len(s.name):], " \t\r\n")
	if rest, found := strings.CutPrefix(rest, "=="); found {
		return hasWordPrefix(strings.TrimLeft(rest, " \t\r\n"), "NULL")
	}
	return false
}
