package expr

import (
	"sort"
	"sync"
)

// DefaultImpl is the backend id of the fallback implementation of a user
// function.
const DefaultImpl = "default"

// Registry maps user functions to their per-backend implementations.
// Implementations are opaque to this package; backends decide what they
// accept. Registration may race with lookup.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]*UserFunction
	impls map[string]map[string]any
}

// DefaultRegistry is the process-wide registry used by UserFunction.RegisterImpl.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]*UserFunction),
		impls: make(map[string]map[string]any),
	}
}

func (r *Registry) declare(fn *UserFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[fn.name] = fn
}

// Register stores impl as the implementation of fn for backendID.
func (r *Registry) Register(fn *UserFunction, backendID string, impl any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[fn.name] = fn
	m, ok := r.impls[fn.Key()]
	if !ok {
		m = make(map[string]any)
		r.impls[fn.Key()] = m
	}
	m[backendID] = impl
}

// Lookup returns the implementation of fn for backendID, falling back to
// the DefaultImpl entry.
func (r *Registry) Lookup(fn *UserFunction, backendID string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.impls[fn.Key()]
	if impl, ok := m[backendID]; ok {
		return impl, true
	}
	impl, ok := m[DefaultImpl]
	return impl, ok
}

// Function returns the declared user function called name.
func (r *Registry) Function(name string) (*UserFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Backends lists the backend ids fn has implementations for.
func (r *Registry) Backends(fn *UserFunction) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id := range r.impls[fn.Key()] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
