package mapping

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"object-mapper/internal/common"
	"object-mapper/node"
)

// TypeRegistry names the Go types a mapping file may refer to.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type // full path -> type
}

// NewTypeRegistry creates a registry holding types.
func NewTypeRegistry(types ...reflect.Type) *TypeRegistry {
	r := &TypeRegistry{types: make(map[string]reflect.Type)}
	r.Register(types...)

	return r
}

// Register adds named types. Pointers are stripped; unnamed types are skipped.
func (r *TypeRegistry) Register(types ...reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range types {
		if t == nil {
			continue
		}

		t = node.Base(t)
		if t.Name() == "" {
			continue
		}

		r.types[fullName(t)] = t
	}
}

// Names returns the short names of all registered types, sorted.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for _, t := range r.types {
		names = append(names, common.TypeName(t))
	}

	slices.Sort(names)

	return names
}

// Resolve resolves a type ID string like:
//   - "store.Order" (short)
//   - "object-mapper/store.Order" (full)
//   - "Order" (name only).
func (r *TypeRegistry) Resolve(id string) reflect.Type {
	if r == nil || id == "" {
		return nil
	}

	id = strings.TrimLeft(id, "*")

	r.mu.RLock()
	defer r.mu.RUnlock()

	lastDot := strings.LastIndex(id, ".")
	if lastDot < 0 {
		return r.find(func(t reflect.Type) bool { return t.Name() == id })
	}

	pkgStr, name := id[:lastDot], id[lastDot+1:]
	if pkgStr == "" || name == "" {
		return nil
	}

	// 1) exact match (for fully qualified import path)
	if t, ok := r.types[id]; ok {
		return t
	}

	// 2) suffix match (for short forms like "store.Order" vs "object-mapper/store.Order")
	return r.find(func(t reflect.Type) bool {
		return t.Name() == name && (t.PkgPath() == pkgStr || strings.HasSuffix(t.PkgPath(), "/"+pkgStr))
	})
}

// find returns the match with the smallest full name so ambiguous short names resolve
// deterministically.
func (r *TypeRegistry) find(match func(reflect.Type) bool) reflect.Type {
	var (
		best     reflect.Type
		bestName string
	)

	for name, t := range r.types {
		if match(t) && (best == nil || name < bestName) {
			best, bestName = t, name
		}
	}

	return best
}

func fullName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}

	return t.PkgPath() + "." + t.Name()
}
