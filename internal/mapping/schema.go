package mapping

import (
	"slices"
	"strings"
)

// File represents the root of a mapping definition file.
// It configures an engine declaratively instead of through code.
type File struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty" toml:"version,omitempty"`

	// Mappings is a list of type pair mappings.
	Mappings []TypeMapping `yaml:"mappings" toml:"mappings"`
}

// TypeMapping configures how one source type maps onto one target type.
type TypeMapping struct {
	// Source type identifier (e.g., "store.Order" or full path).
	Source string `yaml:"source" toml:"source"`

	// Target type identifier (e.g., "warehouse.Order" or full path).
	Target string `yaml:"target" toml:"target"`

	// RuleSets limits the mapping to some rule sets. Empty means every rule set.
	RuleSets StringArray `yaml:"rule_sets,omitempty" toml:"rule_sets,omitempty"`

	// OneToOne is a simplified mapping syntax where keys are source member paths
	// and values are target member paths.
	// Example: { "OrderID": "ID", "Customer.Name": "CustomerName" }
	OneToOne map[string]string `yaml:"121,omitempty" toml:"121,omitempty"`

	// Fields defines explicit member mappings with full control.
	Fields []FieldMapping `yaml:"fields,omitempty" toml:"fields,omitempty"`

	// Ignore lists target member paths that are never populated.
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore,omitempty"`

	// Derive maps a declared interface target type to the concrete type created for it.
	Derive []Derivation `yaml:"derive,omitempty" toml:"derive,omitempty"`
}

// FieldMapping defines how one target member is populated.
// Exactly one of Source, Transform or Default should supply the value; Default may also
// back up Source or Transform when they yield nothing.
type FieldMapping struct {
	// Target is the target member path, e.g. "Address.Street".
	Target string `yaml:"target" toml:"target"`

	// Source is the source member path the value is read from.
	Source string `yaml:"source,omitempty" toml:"source,omitempty"`

	// Default is a literal converted to the target member type.
	Default *string `yaml:"default,omitempty" toml:"default,omitempty"`

	// Transform names a registered function computing the value from the source object.
	Transform string `yaml:"transform,omitempty" toml:"transform,omitempty"`
}

// Derivation names the concrete type created wherever Declared is the target type.
type Derivation struct {
	Declared string `yaml:"declared" toml:"declared"`
	Derived  string `yaml:"derived" toml:"derived"`
}

// TypePair renders the mapping as "source->target" for diagnostics.
func (tm *TypeMapping) TypePair() string {
	return tm.Source + "->" + tm.Target
}

// Normalize expands the 121 shorthand into Fields entries, placed first and ordered by
// target path.
func (tm *TypeMapping) Normalize() {
	if len(tm.OneToOne) == 0 {
		return
	}

	expanded := make([]FieldMapping, 0, len(tm.OneToOne))
	for source, target := range tm.OneToOne {
		expanded = append(expanded, FieldMapping{Source: source, Target: target})
	}

	slices.SortFunc(expanded, func(a, b FieldMapping) int {
		return strings.Compare(a.Target, b.Target)
	})

	tm.Fields = append(expanded, tm.Fields...)
	tm.OneToOne = nil
}

// Normalize normalizes every type mapping of the file.
func (f *File) Normalize() {
	for i := range f.Mappings {
		f.Mappings[i].Normalize()
	}
}

// StringArray is a string slice that can be written as a single string or a list.
type StringArray []string
