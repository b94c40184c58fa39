package btoon

import "sync"

// Registry holds named, immutable schemas for lookup by name. Register is
// a mutating operation and takes the write lock; lookups and validations
// run concurrently under the read lock.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema under its own name, overwriting any existing
// entry of the same name.
func (r *Registry) Register(s *Schema) {
	r.RegisterAs(s.Name(), s)
}

// RegisterAs adds a schema under an explicit name.
func (r *Registry) RegisterAs(name string, s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = s
}

// Get returns the schema registered under name, or nil.
func (r *Registry) Get(name string) *Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemas[name]
}

// Contains reports whether a schema is registered under name.
func (r *Registry) Contains(name string) bool {
	return r.Get(name) != nil
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Validate validates a value against the named schema. An unregistered
// name fails with an unknown_schema validation error.
func (r *Registry) Validate(v *Value, name string, strict bool) error {
	s := r.Get(name)
	if s == nil {
		return &ValidationError{
			Code:    CodeUnknownSchema,
			Field:   name,
			Message: "schema not registered",
		}
	}
	return Validate(v, s, strict)
}
