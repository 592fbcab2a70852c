package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"object-mapper/internal/config"
	"object-mapper/node"
)

// Configurator registers configuration for mapping sources of type S onto targets of
// type T. Methods chain; the first failure is kept and reported by Err, and later
// registrations on the same chain are skipped.
//
// User functions are adapted to the values available at each step:
//   - member values, conditions and callbacks receive (source S, target *T)
//   - factories and their conditions receive (source S)
//
// Parameters may be declared as values or pointers and may be omitted from the right.
// Functions may return (value), (value, bool), (value, error) or (value, bool, error);
// a false bool means "no value".
type Configurator[S, T any] struct {
	m     *Mapper
	scope config.Scope
	errs  *[]error
}

// Configure starts a configuration chain for mapping S onto T under every rule set.
func Configure[S, T any](m *Mapper) *Configurator[S, T] {
	return &Configurator[S, T]{
		m:     m,
		scope: config.Scope{SourceType: reflect.TypeFor[S](), TargetType: reflect.TypeFor[T]()},
		errs:  new([]error),
	}
}

// ForRuleSets returns a chain whose registrations apply only under the given rule sets.
func (c *Configurator[S, T]) ForRuleSets(ruleSets ...RuleSet) *Configurator[S, T] {
	next := *c
	next.scope.RuleSets = ruleSets

	return &next
}

// Err returns the registration failures of the chain.
func (c *Configurator[S, T]) Err() error {
	return errors.Join(*c.errs...)
}

func (c *Configurator[S, T]) register(what string, add func() error) *Configurator[S, T] {
	if len(*c.errs) > 0 {
		return c
	}

	if err := add(); err != nil {
		*c.errs = append(*c.errs, fmt.Errorf("%s for %s: %w", what, c.scope, err))

		return c
	}

	c.m.Reset()

	return c
}

func (c *Configurator[S, T]) caster(fn any) (*node.Caster, error) {
	if fn == nil {
		return nil, nil
	}

	parsed, err := node.ParseCaster(fn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return &parsed, nil
}

// Ignore excludes target members, given as dotted paths, from population.
func (c *Configurator[S, T]) Ignore(paths ...string) *Configurator[S, T] {
	for _, path := range paths {
		c.register("ignore "+path, func() error {
			return c.m.config().AddIgnore(config.Ignore{Scope: c.scope, Path: path})
		})
	}

	return c
}

// IgnoreIf excludes the target member at path when condition returns true.
func (c *Configurator[S, T]) IgnoreIf(path string, condition any) *Configurator[S, T] {
	return c.register("ignore "+path, func() error {
		cond, err := c.caster(condition)
		if err != nil {
			return err
		}

		return c.m.config().AddIgnore(config.Ignore{Scope: c.scope, Path: path, Condition: cond})
	})
}

// Map starts a member data source computed by fn.
func (c *Configurator[S, T]) Map(fn any) *MemberSource[S, T] {
	ms := &MemberSource[S, T]{c: c}

	ms.value, ms.err = c.caster(fn)
	if ms.err == nil && ms.value == nil {
		ms.err = fmt.Errorf("%w: nil value function", ErrInvalidConfiguration)
	}

	return ms
}

// MapFrom starts a member data source reading the source member at a dotted path.
func (c *Configurator[S, T]) MapFrom(path string) *MemberSource[S, T] {
	return &MemberSource[S, T]{c: c, sourcePath: path}
}

// MapValue starts a member data source supplying a constant.
func (c *Configurator[S, T]) MapValue(value any) *MemberSource[S, T] {
	return &MemberSource[S, T]{c: c, constant: reflect.ValueOf(value)}
}

// CreateUsing registers a factory creating T from the source.
func (c *Configurator[S, T]) CreateUsing(fn any) *Configurator[S, T] {
	return c.CreateUsingIf(nil, fn)
}

// CreateUsingIf registers a factory used when condition returns true. Conditional
// factories are tried most recent first, before the unconditional one.
func (c *Configurator[S, T]) CreateUsingIf(condition, fn any) *Configurator[S, T] {
	return c.register("factory", func() error {
		create, err := c.caster(fn)
		if err != nil {
			return err
		}

		cond, err := c.caster(condition)
		if err != nil {
			return err
		}

		return c.m.config().AddFactory(config.Factory{Scope: c.scope, Create: create, Condition: cond})
	})
}

// Constructor registers fn as a constructor of T. Params name its parameters; each is
// matched against the source members like a target member of that name.
func (c *Configurator[S, T]) Constructor(fn any, params ...string) *Configurator[S, T] {
	return c.register("constructor", func() error {
		ctor, err := c.caster(fn)
		if err != nil {
			return err
		}

		return c.m.config().AddConstructor(config.Constructor{Type: reflect.TypeFor[T](), Func: ctor, Params: params})
	})
}

// Before registers fn to run before the creation of T, or before the population of the
// member at path. An error returned by fn aborts the mapping and is returned unchanged.
func (c *Configurator[S, T]) Before(target CallbackTarget, path string, fn any) *Configurator[S, T] {
	return c.callback(config.Before, target, path, fn)
}

// After registers fn to run after the creation of T, or after the population of the
// member at path.
func (c *Configurator[S, T]) After(target CallbackTarget, path string, fn any) *Configurator[S, T] {
	return c.callback(config.After, target, path, fn)
}

func (c *Configurator[S, T]) callback(position config.CallbackPosition, target CallbackTarget, path string, fn any) *Configurator[S, T] {
	return c.register(position.String()+" "+target.String(), func() error {
		action, err := node.ParseAction(fn)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}

		if target == ObjectCreation {
			path = ""
		}

		return c.m.config().AddCallback(config.Callback{
			Scope:    c.scope,
			Position: position,
			Target:   target,
			Path:     path,
			Action:   &action,
		})
	})
}

// DeriveAs makes sources of type S mapped onto the interface T produce values of
// derived, which must implement T.
func (c *Configurator[S, T]) DeriveAs(derived reflect.Type) *Configurator[S, T] {
	return c.register("derived type", func() error {
		return c.m.config().AddDerivedPair(config.DerivedPair{
			Scope:        config.Scope{RuleSets: c.scope.RuleSets},
			SourceType:   c.scope.SourceType,
			DeclaredType: c.scope.TargetType,
			DerivedType:  derived,
		})
	})
}

// MemberSource is a data source waiting for its target member.
type MemberSource[S, T any] struct {
	c          *Configurator[S, T]
	value      *node.Caster
	sourcePath string
	constant   reflect.Value
	fallback   reflect.Value
	condition  any
	err        error
}

// If restricts the data source to sources for which condition returns true. Conditional
// data sources are tried in registration order before the unconditional one.
func (ms *MemberSource[S, T]) If(condition any) *MemberSource[S, T] {
	ms.condition = condition

	return ms
}

// Or sets the value used when the data source yields no value or nil.
func (ms *MemberSource[S, T]) Or(fallback any) *MemberSource[S, T] {
	ms.fallback = reflect.ValueOf(fallback)

	return ms
}

// To registers the data source for the target member at path.
func (ms *MemberSource[S, T]) To(path string) *Configurator[S, T] {
	return ms.c.register("data source "+path, func() error {
		if ms.err != nil {
			return ms.err
		}

		cond, err := ms.c.caster(ms.condition)
		if err != nil {
			return err
		}

		return ms.c.m.config().AddDataSource(config.DataSource{
			Scope:      ms.c.scope,
			Path:       path,
			Value:      ms.value,
			SourcePath: ms.sourcePath,
			Constant:   ms.constant,
			Default:    ms.fallback,
			Condition:  cond,
		})
	})
}
