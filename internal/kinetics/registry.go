package kinetics

import "sync"

// Registry hands out one Compound per formula and remembers the order in
// which species were first registered.
type Registry struct {
	mu        sync.RWMutex
	compounds map[string]*Compound
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{compounds: make(map[string]*Compound)}
}

// Register returns the compound for formula, creating it on first use.
// Options only apply when the compound is created.
func (r *Registry) Register(formula string, opts ...CompoundOption) (*Compound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.compounds[formula]; ok {
		return c, nil
	}
	c, err := NewCompound(formula, opts...)
	if err != nil {
		return nil, err
	}
	r.compounds[formula] = c
	r.order = append(r.order, formula)
	return c, nil
}

func (r *Registry) Get(formula string) (*Compound, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.compounds[formula]
	return c, ok
}

// Compounds returns all registered compounds in registration order.
func (r *Registry) Compounds() []*Compound {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Compound, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, r.compounds[f])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
