package runner

import (
	"slices"
	"sync"

	"github.com/roach88/unitrun/internal/env"
	"github.com/roach88/unitrun/internal/fixture"
)

// Fixture wraps group or unit execution.
type Fixture = fixture.Func[env.Env]

// Fixtures are the ordered fixture lists of one group.
type Fixtures struct {
	Once []Fixture
	Each []Fixture
}

// Registry holds per-group fixtures. Fixtures for a group must be registered
// before that group runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*Fixtures
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*Fixtures)}
}

// Once appends fixtures that wrap the whole group, in order.
func (r *Registry) Once(group string, fs ...Fixture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.group(group)
	g.Once = append(g.Once, fs...)
}

// Each appends fixtures that wrap every unit of the group, in order.
func (r *Registry) Each(group string, fs ...Fixture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.group(group)
	g.Each = append(g.Each, fs...)
}

// Fixtures returns a copy of the fixtures registered for group.
func (r *Registry) Fixtures(group string) Fixtures {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[group]
	if !ok {
		return Fixtures{}
	}
	return Fixtures{Once: slices.Clone(g.Once), Each: slices.Clone(g.Each)}
}

// group must be called with mu held for writing.
func (r *Registry) group(name string) *Fixtures {
	g, ok := r.groups[name]
	if !ok {
		g = &Fixtures{}
		r.groups[name] = g
	}
	return g
}
