package mapper

import (
	"fmt"
	"reflect"

	"object-mapper/internal/diagnostic"
	"object-mapper/internal/mapping"
)

type (
	// ConfigFile is a declarative mapping configuration, usually loaded from YAML or TOML.
	ConfigFile = mapping.File
	// TypeMapping configures one source and target type pair of a ConfigFile.
	TypeMapping = mapping.TypeMapping
	// Diagnostics collects the findings of a configuration check.
	Diagnostics = diagnostic.Diagnostics
)

// RegisterType makes named types available to mapping files. Types are referenced by
// their package name and type name, e.g. "store.Order", by their full import path, or
// by their bare name when it is unique.
func (m *Mapper) RegisterType(types ...reflect.Type) {
	m.types.Register(types...)
}

// RegisterTransform registers a function that mapping files can name as a field
// transform. The function receives the source object and returns the member value.
func (m *Mapper) RegisterTransform(name string, fn any) error {
	if err := m.transforms.Add(name, fn); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return nil
}

// LoadConfigFile loads a YAML or TOML mapping file and registers its rules. See
// LoadConfig.
func (m *Mapper) LoadConfigFile(path string) (*Diagnostics, error) {
	f, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return m.LoadConfig(f)
}

// LoadConfig checks f against the registered types and transforms and registers its
// rules. Nothing is registered when the check reports an error. The returned
// diagnostics hold warnings as well as errors.
func (m *Mapper) LoadConfig(f *ConfigFile) (*Diagnostics, error) {
	diags, err := mapping.Apply(f, m.env(), m.config())
	if err != nil {
		return diags, err
	}

	m.Reset()

	return diags, nil
}

// CheckConfigFile reads a YAML or TOML mapping file and checks it without registering
// anything. See CheckConfig.
func (m *Mapper) CheckConfigFile(path string) (*Diagnostics, error) {
	f, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return m.CheckConfig(f), nil
}

// CheckConfig checks f against the registered types and transforms. Unlike LoadConfig
// it registers nothing, so a file can be checked before it is loaded.
func (m *Mapper) CheckConfig(f *ConfigFile) *Diagnostics {
	return mapping.Validate(f, m.env())
}

func (m *Mapper) env() mapping.Env {
	return mapping.Env{
		Types:       m.types,
		Transforms:  m.transforms,
		Finder:      m.engine.Finder(),
		Conversions: m.engine.Settings().Conversions,
	}
}

// ResolveType returns the registered type named id, or nil.
func (m *Mapper) ResolveType(id string) reflect.Type {
	return m.types.Resolve(id)
}

// TypeNames returns the names of the registered types, sorted.
func (m *Mapper) TypeNames() []string {
	return m.types.Names()
}
