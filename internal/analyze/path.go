package analyze

import (
	"strings"
)

// TypePath builds a readable path string for a member chain.
// Examples:
//   - "Order" for a simple struct
//   - "Order.Items" for a nested field
//   - "Order.Items[]" for a slice field
//   - "Order.Items[].ProductID" for a field within slice elements
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root type name.
func NewTypePath(root string) TypePath {
	return TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p TypePath) Field(name string) TypePath {
	return TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Slice appends a collection element indicator "[]" to the path.
func (p TypePath) Slice() TypePath {
	if len(p.parts) == 0 {
		return TypePath{parts: []string{"[]"}}
	}

	newParts := append([]string{}, p.parts...)
	newParts[len(newParts)-1] += "[]"

	return TypePath{parts: newParts}
}

// IsEmpty reports whether nothing was appended to the path.
func (p TypePath) IsEmpty() bool {
	return len(p.parts) == 0
}

// String returns the full path string.
func (p TypePath) String() string {
	return strings.Join(p.parts, ".")
}
