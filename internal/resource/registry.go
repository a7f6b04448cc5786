package resource

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds resource types by name
type Registry struct {
	types map[string]*Metadata
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Metadata),
	}
}

// Register adds a resource type. Names must be unique.
func (r *Registry) Register(meta *Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[meta.name]; exists {
		return fmt.Errorf("resource %s is already registered", meta.name)
	}
	r.types[meta.name] = meta
	return nil
}

// Get retrieves a resource type by name
func (r *Registry) Get(name string) (*Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.types[name]
	return meta, ok
}

// List returns the sorted names of all registered types
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered types
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.types)
}

// Clear removes all registered types (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types = make(map[string]*Metadata)
}
