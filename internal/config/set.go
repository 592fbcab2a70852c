package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"object-mapper/node"
)

// Set is the configuration of one engine. It is safe for concurrent use; registrations
// are expected to happen before mapping starts.
type Set struct {
	mu           sync.RWMutex
	ignores      []*Ignore
	dataSources  []*DataSource
	factories    []*Factory
	constructors []*Constructor
	callbacks    []*Callback
	derived      []*DerivedPair
}

// NewSet creates an empty configuration.
func NewSet() *Set {
	return &Set{}
}

// AddIgnore registers an ignored member. An unconditional ignore conflicts with an
// unconditional data source for the same member and overlapping scope.
func (s *Set) AddIgnore(item Ignore) error {
	if err := validatePath(item.Path); err != nil {
		return err
	}

	if err := validateCondition(item.Condition); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Condition == nil {
		for _, ds := range s.dataSources {
			if ds.Unconditional() && ds.Path == item.Path && ds.Scope.Overlaps(item.Scope) {
				return fmt.Errorf("%w: %s.%s is ignored and has a configured data source",
					ErrConfigurationConflict, scopeTypeName(item.Scope.TargetType), item.Path)
			}
		}
	}

	s.ignores = append(s.ignores, &item)

	return nil
}

// AddDataSource registers a configured data source. Two unconditional data sources for
// the same member and overlapping scope conflict, as does one for an ignored member.
func (s *Set) AddDataSource(item DataSource) error {
	if err := validatePath(item.Path); err != nil {
		return err
	}

	if err := validateCondition(item.Condition); err != nil {
		return err
	}

	if item.Value != nil && item.Value.Dst == nil {
		return fmt.Errorf("%w: data source %s returns no value", ErrInvalidConfiguration, item.Value)
	}

	if item.SourcePath != "" {
		if err := validatePath(item.SourcePath); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Unconditional() {
		for _, existing := range s.dataSources {
			if existing.Unconditional() && existing.Path == item.Path && existing.Scope.Overlaps(item.Scope) {
				return fmt.Errorf("%w: %s.%s already has an unconditional data source (%s)",
					ErrConfigurationConflict, scopeTypeName(item.Scope.TargetType), item.Path, existing)
			}
		}

		for _, ignore := range s.ignores {
			if ignore.Condition == nil && ignore.Path == item.Path && ignore.Scope.Overlaps(item.Scope) {
				return fmt.Errorf("%w: %s.%s is ignored",
					ErrConfigurationConflict, scopeTypeName(item.Scope.TargetType), item.Path)
			}
		}
	}

	s.dataSources = append(s.dataSources, &item)

	return nil
}

// AddFactory registers an object factory for Scope.TargetType. Factories never
// conflict: the most recently registered one covering a context is tried first.
func (s *Set) AddFactory(item Factory) error {
	if item.Scope.TargetType == nil || item.Create == nil || item.Create.Dst == nil {
		return fmt.Errorf("%w: factory needs a target type and a creating function", ErrInvalidConfiguration)
	}

	if node.Base(item.Create.Dst) != node.Base(item.Scope.TargetType) &&
		!item.Create.Dst.AssignableTo(item.Scope.TargetType) {
		return fmt.Errorf("%w: factory %s does not create %s",
			ErrInvalidConfiguration, item.Create, scopeTypeName(item.Scope.TargetType))
	}

	if err := validateCondition(item.Condition); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a later unconditional factory shadows earlier ones, see Factories
	s.factories = append(s.factories, &item)

	return nil
}

// AddConstructor registers a constructor function with its parameter names.
func (s *Set) AddConstructor(item Constructor) error {
	if item.Func == nil || item.Func.Dst == nil {
		return fmt.Errorf("%w: constructor returns no value", ErrInvalidConfiguration)
	}

	if len(item.Params) != len(item.Func.In) {
		return fmt.Errorf("%w: constructor %s has %d parameters, %d names given",
			ErrInvalidConfiguration, item.Func, len(item.Func.In), len(item.Params))
	}

	if item.Type == nil {
		item.Type = item.Func.Dst
	}

	item.Type = node.Base(item.Type)
	if node.Base(item.Func.Dst) != item.Type {
		return fmt.Errorf("%w: constructor %s does not create %s",
			ErrInvalidConfiguration, item.Func, scopeTypeName(item.Type))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.constructors = append(s.constructors, &item)

	return nil
}

// AddCallback registers a callback.
func (s *Set) AddCallback(item Callback) error {
	if item.Action == nil {
		return fmt.Errorf("%w: callback without action", ErrInvalidConfiguration)
	}

	if item.Target == MemberPopulation {
		if err := validatePath(item.Path); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.callbacks = append(s.callbacks, &item)

	return nil
}

// AddDerivedPair registers a derived target type for an interface target.
func (s *Set) AddDerivedPair(item DerivedPair) error {
	if item.DeclaredType == nil || item.DerivedType == nil {
		return fmt.Errorf("%w: derived pair needs declared and derived types", ErrInvalidConfiguration)
	}

	if !item.DerivedType.AssignableTo(item.DeclaredType) {
		return fmt.Errorf("%w: %s is not assignable to %s",
			ErrInvalidConfiguration, scopeTypeName(item.DerivedType), scopeTypeName(item.DeclaredType))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.derived {
		if existing.DeclaredType == item.DeclaredType && sameOrAny(existing.SourceType, item.SourceType) &&
			existing.Scope.Overlaps(item.Scope) && existing.DerivedType != item.DerivedType {
			return fmt.Errorf("%w: %s already derives to %s",
				ErrConfigurationConflict, scopeTypeName(item.DeclaredType), scopeTypeName(existing.DerivedType))
		}
	}

	s.derived = append(s.derived, &item)

	return nil
}

// IgnoredMember returns the ignores applying to the member, stopping at the first
// unconditional one.
func (s *Set) IgnoredMember(ctx MemberContext) []*Ignore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Ignore

	for _, item := range s.ignores {
		if item.Path == ctx.Path && item.Scope.Covers(ctx) {
			if item.Condition == nil {
				return []*Ignore{item}
			}

			out = append(out, item)
		}
	}

	return out
}

// DataSources returns the configured data sources of the member: conditional ones in
// registration order, then the first unconditional one.
func (s *Set) DataSources(ctx MemberContext) []*DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		out      []*DataSource
		fallback *DataSource
	)

	for _, item := range s.dataSources {
		if item.Path != ctx.Path || !item.Scope.Covers(ctx) {
			continue
		}

		if !item.Unconditional() {
			out = append(out, item)
		} else if fallback == nil {
			fallback = item
		}
	}

	if fallback != nil {
		out = append(out, fallback)
	}

	return out
}

// Factories returns the factories for ctx.TargetType, most recently registered first,
// ending with the first unconditional one.
func (s *Set) Factories(ctx MemberContext) []*Factory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Factory

	for i := len(s.factories) - 1; i >= 0; i-- {
		item := s.factories[i]
		if !item.Scope.Covers(ctx) || node.Base(item.Scope.TargetType) != node.Base(ctx.TargetType) {
			continue
		}

		out = append(out, item)
		if item.Unconditional() {
			break
		}
	}

	return out
}

// Constructors returns the constructors of t in registration order.
func (s *Set) Constructors(t reflect.Type) []*Constructor {
	t = node.Base(t)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Constructor

	for _, item := range s.constructors {
		if item.Type == t {
			out = append(out, item)
		}
	}

	return out
}

// Callbacks returns the callbacks for a step in registration order. Path is ignored for
// ObjectCreation callbacks.
func (s *Set) Callbacks(position CallbackPosition, target CallbackTarget, ctx MemberContext) []*Callback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Callback

	for _, item := range s.callbacks {
		if item.Position != position || item.Target != target || !item.Scope.Covers(ctx) {
			continue
		}

		if target == MemberPopulation && item.Path != ctx.Path {
			continue
		}

		out = append(out, item)
	}

	return out
}

// DerivedType returns the configured concrete type for sources of runtime type source
// mapped onto declared, or nil. The most recent matching pair wins.
func (s *Set) DerivedType(ctx MemberContext, source, declared reflect.Type) reflect.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.derived) - 1; i >= 0; i-- {
		item := s.derived[i]
		if item.DeclaredType == declared && typeCovers(item.SourceType, source) && item.Scope.Covers(ctx) {
			return item.DerivedType
		}
	}

	return nil
}

// HasDeeperConfiguration reports whether an ignore, data source or member callback
// addresses a path below the member of ctx.
func (s *Set) HasDeeperConfiguration(ctx MemberContext) bool {
	prefix := ctx.Path + "."
	if ctx.Path == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	deeper := func(path string, scope Scope) bool {
		return strings.HasPrefix(path, prefix) && scope.Covers(ctx)
	}

	for _, item := range s.ignores {
		if deeper(item.Path, item.Scope) {
			return true
		}
	}

	for _, item := range s.dataSources {
		if deeper(item.Path, item.Scope) {
			return true
		}
	}

	for _, item := range s.callbacks {
		if item.Target == MemberPopulation && deeper(item.Path, item.Scope) {
			return true
		}
	}

	return false
}

// Len returns the number of registered items.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.ignores) + len(s.dataSources) + len(s.factories) +
		len(s.constructors) + len(s.callbacks) + len(s.derived)
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty member path", ErrInvalidConfiguration)
	}

	for _, segment := range strings.Split(path, ".") {
		if segment == "" || strings.ContainsAny(segment, "[] \t") {
			return fmt.Errorf("%w: invalid member path %q", ErrInvalidConfiguration, path)
		}
	}

	return nil
}
