package mapping

import (
	"fmt"
	"slices"
	"sync"

	"object-mapper/node"
)

// TransformRegistry holds the named functions a mapping file may use as transforms.
// A transform receives the source object, and optionally the target object, and returns
// the member value.
type TransformRegistry struct {
	mu         sync.RWMutex
	transforms map[string]*node.Caster
}

// NewTransformRegistry creates a new empty transform registry.
func NewTransformRegistry() *TransformRegistry {
	return &TransformRegistry{
		transforms: make(map[string]*node.Caster),
	}
}

// Add validates fn as a caster and registers it under name. Registering a name twice
// replaces the earlier function.
func (r *TransformRegistry) Add(name string, fn any) error {
	if name == "" {
		return fmt.Errorf("transform needs a name")
	}

	caster, err := node.ParseCaster(fn)
	if err != nil {
		return fmt.Errorf("transform %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.transforms[name] = &caster

	return nil
}

// Get returns a transform by name, or nil if not found.
func (r *TransformRegistry) Get(name string) *node.Caster {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.transforms[name]
}

// Has returns true if a transform with the given name exists.
func (r *TransformRegistry) Has(name string) bool {
	return r.Get(name) != nil
}

// Names returns all transform names, sorted.
func (r *TransformRegistry) Names() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
