package fut

import (
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/cwbudde/algo-testeng/internal/cpu"
)

// Entry binds a stable ID to a function.
type Entry struct {
	ID   string
	Func Function
	// Requires is the CPU feature level the implementation needs.
	Requires cpu.SIMDLevel
	// Doc is a one-line description for listings.
	Doc string
}

// Available reports why the entry cannot run on a host with features f:
// ErrMissing when there is no implementation, ErrUnsupported when a
// required feature is absent, nil otherwise. Either error means the
// function is not tested rather than failed.
func (e Entry) Available(f cpu.Features) error {
	if e.Func == nil || !e.Func.Implemented() {
		return fmt.Errorf("%w: %s", ErrMissing, e.ID)
	}

	if !f.Supports(e.Requires) {
		return fmt.Errorf("%w: %s needs %s", ErrUnsupported, e.ID, e.Requires)
	}

	return nil
}

// Registry maps IDs to functions. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e. IDs are unique.
func (r *Registry) Register(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrDuplicate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.ID)
	}

	r.entries[e.ID] = e

	return nil
}

// MustRegister is Register for package initialization; it panics on error.
func (r *Registry) MustRegister(entries ...Entry) {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the entry registered under id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	return e, ok
}

// IDs returns every registered ID in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))

	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)

	return ids
}

// Match returns the entries whose ID matches any of the shell patterns, in
// ID order. No patterns matches everything.
func (r *Registry) Match(patterns ...string) ([]Entry, error) {
	var out []Entry

	for _, id := range r.IDs() {
		ok := len(patterns) == 0

		for _, p := range patterns {
			m, err := path.Match(p, id)
			if err != nil {
				return nil, fmt.Errorf("fut: bad pattern %q: %w", p, err)
			}

			if m {
				ok = true

				break
			}
		}

		if ok {
			e, _ := r.Lookup(id)
			out = append(out, e)
		}
	}

	return out, nil
}

// Partner returns the inverse partner of a transform entry.
func (r *Registry) Partner(e Entry) (Entry, *Transform, error) {
	t, ok := e.Func.(*Transform)
	if !ok || t.Partner == "" {
		return Entry{}, nil, fmt.Errorf("%w: %s has no partner", ErrMissing, e.ID)
	}

	p, ok := r.Lookup(t.Partner)
	if !ok {
		return Entry{}, nil, fmt.Errorf("%w: partner %s of %s", ErrMissing, t.Partner, e.ID)
	}

	pt, ok := p.Func.(*Transform)
	if !ok {
		return Entry{}, nil, fmt.Errorf("%w: partner %s is not a transform", ErrShape, p.ID)
	}

	return p, pt, nil
}
