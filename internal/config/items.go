package config

import (
	"errors"
	"fmt"
	"reflect"

	"object-mapper/internal/common"
	"object-mapper/node"
)

var (
	ErrConfigurationConflict = errors.New("configuration conflict")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
)

// Ignore excludes a target member from population, optionally only when Condition holds.
type Ignore struct {
	Scope     Scope
	Path      string
	Condition *node.Caster
}

// DataSource supplies the value of a target member: the result of Value, the source
// member at SourcePath, or Constant. Default replaces a missing value.
type DataSource struct {
	Scope      Scope
	Path       string
	Value      *node.Caster
	SourcePath string // dotted path below the source object
	Constant   reflect.Value
	Default    reflect.Value
	Condition  *node.Caster
}

// Type returns the static type of the supplied value, nil for SourcePath data sources
// whose type depends on the source type.
func (d *DataSource) Type() reflect.Type {
	if d.Value != nil {
		return d.Value.Dst
	}

	if d.SourcePath != "" {
		return nil
	}

	if !d.Constant.IsValid() {
		return nil
	}

	return d.Constant.Type()
}

// Unconditional reports whether the data source always applies.
func (d *DataSource) Unconditional() bool {
	return d.Condition == nil
}

// String describes the value for plan descriptions.
func (d *DataSource) String() string {
	if d.Value != nil {
		return d.Value.String() + "(...)"
	}

	if d.SourcePath != "" {
		return "source." + d.SourcePath
	}

	if !d.Constant.IsValid() {
		return "nil"
	}

	return fmt.Sprintf("%#v", d.Constant.Interface())
}

// Factory creates instances of Scope.TargetType, optionally only when Condition holds.
type Factory struct {
	Scope     Scope
	Create    *node.Caster
	Condition *node.Caster
}

// Unconditional reports whether the factory always applies.
func (f *Factory) Unconditional() bool {
	return f.Condition == nil
}

// Constructor is a function producing Type from named parameters.
type Constructor struct {
	Type   reflect.Type
	Func   *node.Caster
	Params []string
}

// Arity returns the number of parameters.
func (c *Constructor) Arity() int {
	return len(c.Params)
}

// String renders the constructor signature with parameter names.
func (c *Constructor) String() string {
	s := c.Func.String() + "("
	for i, p := range c.Params {
		if i > 0 {
			s += ", "
		}

		s += p + " " + common.TypeName(c.Func.In[i])
	}

	return s + ")"
}

// CallbackPosition places a callback before or after the addressed step.
type CallbackPosition int

const (
	Before CallbackPosition = iota
	After
)

func (p CallbackPosition) String() string {
	if p == Before {
		return "before"
	}

	return "after"
}

// CallbackTarget selects the step a callback surrounds.
type CallbackTarget int

const (
	ObjectCreation CallbackTarget = iota
	MemberPopulation
)

func (t CallbackTarget) String() string {
	if t == ObjectCreation {
		return "creation"
	}

	return "population"
}

// Callback runs Action before or after object creation or a member population.
// An error returned by Action aborts the mapping and is returned unchanged.
type Callback struct {
	Scope    Scope
	Position CallbackPosition
	Target   CallbackTarget
	Path     string // member path for MemberPopulation
	Action   *node.Caster
}

// DerivedPair maps sources of SourceType onto DerivedType wherever DeclaredType is the target.
type DerivedPair struct {
	Scope        Scope
	SourceType   reflect.Type
	DeclaredType reflect.Type
	DerivedType  reflect.Type
}

// Holds evaluates an optional boolean condition. A nil condition always holds.
func Holds(condition *node.Caster, args ...reflect.Value) (bool, error) {
	if condition == nil {
		return true, nil
	}

	out, ok, err := condition.Call(args...)
	if err != nil || !ok {
		return false, err
	}

	return out.Bool(), nil
}

func validateCondition(condition *node.Caster) error {
	if condition != nil && (condition.Dst == nil || condition.Dst.Kind() != reflect.Bool) {
		return fmt.Errorf("%w: condition %s must return bool", ErrInvalidConfiguration, condition)
	}

	return nil
}
