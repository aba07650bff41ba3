package patterns

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new matcher instance.
type Factory func() Matcher

// Info contains metadata about a registered shape.
type Info struct {
	ID    string
	Name  string
	Tier  Tier
	Cells int
}

// Registry maps shape IDs to matcher factories. It is populated once at
// startup from the configured shape list and read afterwards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	info      map[string]Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		info:      make(map[string]Info),
	}
}

// NewRegistryFromShapes registers a ShapeMatcher for every shape.
func NewRegistryFromShapes(shapes []Shape) (*Registry, error) {
	r := NewRegistry()
	for _, s := range shapes {
		m, err := NewShapeMatcher(s)
		if err != nil {
			return nil, err
		}
		if err := r.Register(s.ID, func() Matcher { return m }); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a matcher factory. Registering the same ID twice is an error.
func (r *Registry) Register(id string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("patterns: shape %q already registered", id)
	}

	// Get metadata by creating a temporary instance
	s := f().Shape()
	r.factories[id] = f
	r.info[id] = Info{ID: id, Name: s.Name, Tier: s.Tier, Cells: len(s.Cells)}
	return nil
}

// List returns information about all registered shapes, sorted by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.info))
	for _, info := range r.info {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a matcher by shape ID.
func (r *Registry) Create(id string) (Matcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("patterns: unknown shape %q", id)
	}
	return f(), nil
}

// Exists checks if a shape with the given ID is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[id]
	return ok
}

// Matchers instantiates every registered matcher in detection priority
// order: more cells first, then larger bounding box, then shape ID.
func (r *Registry) Matchers() []Matcher {
	r.mu.RLock()
	out := make([]Matcher, 0, len(r.factories))
	for _, f := range r.factories {
		out = append(out, f())
	}
	r.mu.RUnlock()

	SortByPriority(out)
	return out
}

// SortByPriority orders matchers by descending complexity.
func SortByPriority(ms []Matcher) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i].Shape(), ms[j].Shape()
		if len(a.Cells) != len(b.Cells) {
			return len(a.Cells) > len(b.Cells)
		}
		if aa, ba := a.Area(), b.Area(); aa != ba {
			return aa > ba
		}
		return a.ID < b.ID
	})
}
