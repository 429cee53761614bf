package catalog

import (
	"sort"
	"sync"

	"github.com/dshills/snipstorm/internal/engine/graph"
)

// Registry holds snippet definitions keyed by name.
// Safe for concurrent readers with a single writer.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]graph.Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]graph.Definition)}
}

// Get returns the definition with the given name.
func (r *Registry) Get(name string) (graph.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Put stores a definition, replacing any previous one with its name.
func (r *Registry) Put(def graph.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
}

// Remove deletes a definition by name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, name)
}

// Names returns all definition names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
