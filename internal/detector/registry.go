package detector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sajari/fuzzy"
)

// Registry holds the configured detectors in their run order.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
		order:     make([]string, 0),
	}
}

// New builds a registry with every detector configured from p, in the
// order their findings are reported.
func New(p Policy) (*Registry, error) {
	naming, err := NewNaming(p.FunctionPattern, p.MacroPattern, p.NamingExempt)
	if err != nil {
		return nil, err
	}
	resources, err := NewResourceLifecycle(p.Allocators, p.Releasers, p.OwnershipEscape)
	if err != nil {
		return nil, err
	}
	calls, err := NewUncheckedReturn(p.Syscalls)
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	r.Register(&FileLength{Max: p.MaxFileLines})
	r.Register(&FunctionLength{Max: p.MaxFunctionLines})
	r.Register(&LineLength{Max: p.MaxLineLength})
	r.Register(&TodoComment{})
	r.Register(naming)
	r.Register(resources)
	r.Register(calls)
	return r, nil
}

// Register adds d, replacing any detector with the same name.
func (r *Registry) Register(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := d.Name()
	if _, exists := r.detectors[name]; !exists {
		r.order = append(r.order, name)
	}
	r.detectors[name] = d
}

// Get retrieves a detector by name.
func (r *Registry) Get(name string) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.detectors[name]
	return d, ok
}

// All returns the detectors in registration order.
func (r *Registry) All() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Detector, len(r.order))
	for i, name := range r.order {
		out[i] = r.detectors[name]
	}
	return out
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Select returns the named detectors in registration order. An empty list
// selects everything. Unknown names are an error that suggests the closest
// registered name.
func (r *Registry) Select(names []string) ([]Detector, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.Get(name); !ok {
			return nil, UnknownNameError(name, r.Names())
		}
		want[name] = true
	}
	var out []Detector
	for _, d := range r.All() {
		if want[d.Name()] {
			out = append(out, d)
		}
	}
	return out, nil
}

// UnknownNameError describes an unknown detector name, with a "did you mean"
// hint when one of known is close enough.
func UnknownNameError(name string, known []string) error {
	if hint := Suggest(name, known); hint != "" {
		return fmt.Errorf("unknown detector %q (did you mean %q?)", name, hint)
	}
	sorted := append([]string(nil), known...)
	sort.Strings(sorted)
	return fmt.Errorf("unknown detector %q (known: %v)", name, sorted)
}

// Suggest returns the entry of known closest to name within two edits, or "".
// Candidates sharing the first letter with name are preferred.
func Suggest(name string, known []string) string {
	model := fuzzy.NewModel()
	model.SetDepth(2)
	model.SetThreshold(1)
	model.SetUseAutocomplete(false)
	for _, k := range known {
		model.TrainWord(k)
	}

	candidates := model.Suggestions(name, false)
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := sameInitial(candidates[i], name), sameInitial(candidates[j], name)
		if ci != cj {
			return ci
		}
		return candidates[i] < candidates[j]
	})
	for _, c := range candidates {
		if c != name {
			return c
		}
	}
	return ""
}

func sameInitial(a, b string) bool {
	return a != "" && b != "" && a[0] == b[0]
}

// Names of every stock detector, in run order.
var StockNames = []string{
	FileLengthName,
	FunctionLengthName,
	LineLengthName,
	TodoCommentName,
	NamingName,
	ResourceLifecycleName,
	UncheckedReturnName,
}
