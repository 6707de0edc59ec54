package clientmodel

import "sync"

// ModelLookup resolves a model by name. Implementations can supply models
// that are not produced from the code model, such as hand-written types
// shared across services.
type ModelLookup interface {
	LookupModel(name string) (*ClientModel, bool)
}

// ModelLookupFunc adapts a function to ModelLookup.
type ModelLookupFunc func(name string) (*ClientModel, bool)

// LookupModel implements ModelLookup.
func (f ModelLookupFunc) LookupModel(name string) (*ClientModel, bool) { return f(name) }

// Registry holds the models of one generation run. A Registry is passed to
// the mapper and assembler explicitly; there is no package-level instance.
type Registry struct {
	mu       sync.RWMutex
	models   map[string]*ClientModel
	order    []string
	override ModelLookup
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithOverride consults l before the registry's own models.
func WithOverride(l ModelLookup) RegistryOption {
	return func(r *Registry) { r.override = l }
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{models: make(map[string]*ClientModel)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers m. A model with the same name is replaced in place and
// returned.
func (r *Registry) Add(m *ClientModel) *ClientModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.models[m.Name]
	if !ok {
		r.order = append(r.order, m.Name)
	}
	r.models[m.Name] = m
	return prev
}

// Get returns the model called name, asking the override first.
func (r *Registry) Get(name string) (*ClientModel, bool) {
	if r.override != nil {
		if m, ok := r.override.LookupModel(name); ok {
			return m, true
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Models returns the registered models in registration order.
func (r *Registry) Models() []*ClientModel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ClientModel, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.models[name])
	}
	return out
}

// Ancestors returns the parents of m, nearest first. The walk stops at the
// first unknown name or at a name already visited.
func (r *Registry) Ancestors(m *ClientModel) []*ClientModel {
	var out []*ClientModel
	seen := map[string]bool{m.Name: true}
	for name := m.ParentName; name != "" && !seen[name]; {
		seen[name] = true
		parent, ok := r.Get(name)
		if !ok {
			break
		}
		out = append(out, parent)
		name = parent.ParentName
	}
	return out
}

// ParentProperties returns the properties m inherits, from the root down.
func (r *Registry) ParentProperties(m *ClientModel) []*Property {
	ancestors := r.Ancestors(m)
	var out []*Property
	for i := len(ancestors) - 1; i >= 0; i-- {
		out = append(out, ancestors[i].Properties...)
	}
	return out
}
