package mapper

import (
	"context"
	"fmt"
	"reflect"

	"object-mapper/internal/config"
	"object-mapper/internal/mapping"
	"object-mapper/internal/plan"
	"object-mapper/options"
	"object-mapper/primitive"
)

// RuleSet is the mapping mode.
type RuleSet = config.RuleSet

const (
	CreateNew = config.CreateNew // always construct the target
	Merge     = config.Merge     // augment an existing target
	Overwrite = config.Overwrite // replace the contents of an existing target
)

// CallbackTarget selects the step a callback surrounds.
type CallbackTarget = config.CallbackTarget

const (
	ObjectCreation   = config.ObjectCreation
	MemberPopulation = config.MemberPopulation
)

var (
	ErrTargetNotConstructable = plan.ErrTargetNotConstructable
	ErrConversionUnsupported  = plan.ErrConversionUnsupported
	ErrConversionFailed       = primitive.ErrConversionFailed
	ErrConfigurationConflict  = config.ErrConfigurationConflict
	ErrInvalidConfiguration   = config.ErrInvalidConfiguration
)

type (
	// MappingError locates a failure inside a mapping call.
	MappingError = plan.MappingError
	// Stats holds plan cache counters.
	Stats = plan.Stats
	// Description is a readable rendering of a plan and the plans it uses.
	Description = plan.Description
)

// ParseRuleSet parses a rule set name such as "new", "merge" or "overwrite".
func ParseRuleSet(s string) (RuleSet, error) {
	return config.ParseRuleSet(s)
}

// Mapper maps object graphs with plans compiled once per source type, target type and
// rule set. It is safe for concurrent use; configuration is expected to be registered
// before mapping starts.
type Mapper struct {
	engine     *plan.Engine
	types      *mapping.TypeRegistry
	transforms *mapping.TransformRegistry
}

// New creates a mapper with an empty configuration.
func New(opts ...options.Option) *Mapper {
	return &Mapper{
		engine:     plan.NewEngine(config.NewSet(), options.Apply(opts...)),
		types:      mapping.NewTypeRegistry(),
		transforms: mapping.NewTransformRegistry(),
	}
}

// Map maps source onto a value of T under CreateNew.
func Map[T any](m *Mapper, source any) (T, error) {
	return MapContext[T](context.Background(), m, CreateNew, source, nil)
}

// MapOnto maps source onto existing under Merge: members without a source value keep
// their contents and collections are merged. A pointer existing is updated in place.
func MapOnto[T any](m *Mapper, source any, existing T) (T, error) {
	return MapContext[T](context.Background(), m, Merge, source, existing)
}

// MapOver maps source onto existing under Overwrite: every mapped member is replaced and
// collections end up matching the source. A pointer existing is updated in place.
func MapOver[T any](m *Mapper, source any, existing T) (T, error) {
	return MapContext[T](context.Background(), m, Overwrite, source, existing)
}

// MapContext maps source onto a value of T under ruleSet. Existing is ignored for
// CreateNew. Mapping stops early with ctx's error when ctx is done.
func MapContext[T any](ctx context.Context, m *Mapper, ruleSet RuleSet, source any, existing any) (T, error) {
	var zero T

	out, err := m.MapValue(ctx, ruleSet, source, reflect.TypeFor[T](), existing)
	if err != nil || out == nil {
		return zero, err
	}

	typed, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("%w: mapped %T, want %s", ErrConversionUnsupported, out, reflect.TypeFor[T]())
	}

	return typed, nil
}

// MapValue is the untyped form of MapContext. The result has type targetType, or is
// nil when the mapping produced no value.
func (m *Mapper) MapValue(
	ctx context.Context, ruleSet RuleSet, source any, targetType reflect.Type, existing any,
) (any, error) {
	var ev reflect.Value
	if existing != nil && ruleSet.ReusesTarget() {
		ev = reflect.ValueOf(existing)
	}

	out, err := m.engine.Map(ctx, ruleSet, reflect.ValueOf(source), targetType, ev)
	if err != nil {
		return nil, err
	}

	if !out.IsValid() || !out.CanInterface() {
		return nil, nil
	}

	return out.Interface(), nil
}

// Describe compiles the plan mapping source onto target under ruleSet, together with the
// plans it uses, and describes them.
func (m *Mapper) Describe(ctx context.Context, ruleSet RuleSet, source, target reflect.Type) (*Description, error) {
	return m.engine.Describe(ctx, plan.NewKey(ruleSet, source, target))
}

// PlanFor returns the text description of the plan mapping S onto T under ruleSet.
func PlanFor[S, T any](m *Mapper, ruleSet RuleSet) (string, error) {
	d, err := m.Describe(context.Background(), ruleSet, reflect.TypeFor[S](), reflect.TypeFor[T]())
	if err != nil {
		return "", err
	}

	return d.Text(), nil
}

// Reset drops every compiled plan. Plans compile again on their next use, picking up
// configuration registered since.
func (m *Mapper) Reset() {
	m.engine.Reset()
}

// Stats returns plan cache counters.
func (m *Mapper) Stats() Stats {
	return m.engine.Stats()
}

func (m *Mapper) config() *config.Set {
	return m.engine.Config()
}
