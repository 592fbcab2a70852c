package plan

import (
	"context"
	"reflect"

	"object-mapper/internal/config"
	"object-mapper/node"
)

// MappingContext carries the state of one top-level mapping call. It remembers every
// target produced from a source object so that cycles and shared references map onto a
// single target instance. It is not safe for concurrent use.
type MappingContext struct {
	ctx        context.Context
	ruleSet    config.RuleSet
	identities map[identityKey]reflect.Value
}

type identityKey struct {
	ptr    uintptr
	source reflect.Type
	target reflect.Type
}

// NewMappingContext creates the context of one mapping call.
func NewMappingContext(ctx context.Context, ruleSet config.RuleSet) *MappingContext {
	if ctx == nil {
		ctx = context.Background()
	}

	return &MappingContext{
		ctx:        ctx,
		ruleSet:    ruleSet,
		identities: make(map[identityKey]reflect.Value),
	}
}

// RuleSet returns the rule set of the mapping call.
func (c *MappingContext) RuleSet() config.RuleSet { return c.ruleSet }

// Context returns the context the mapping call was started with.
func (c *MappingContext) Context() context.Context { return c.ctx }

// Lookup returns the target already mapped from source onto targetType.
func (c *MappingContext) Lookup(source reflect.Value, targetType reflect.Type) (reflect.Value, bool) {
	key, ok := newIdentityKey(source, targetType)
	if !ok {
		return reflect.Value{}, false
	}

	target, ok := c.identities[key]

	return target, ok
}

// Register records target, a pointer, as the result of mapping source onto targetType.
// Sources without a stable address are not recorded.
func (c *MappingContext) Register(source reflect.Value, targetType reflect.Type, target reflect.Value) {
	if key, ok := newIdentityKey(source, targetType); ok {
		c.identities[key] = target
	}
}

// Len returns the number of registered targets.
func (c *MappingContext) Len() int {
	return len(c.identities)
}

func newIdentityKey(source reflect.Value, targetType reflect.Type) (identityKey, bool) {
	for source.IsValid() && source.Kind() == reflect.Interface {
		source = source.Elem()
	}

	var ptr uintptr

	switch {
	case !source.IsValid():
		return identityKey{}, false
	case source.Kind() == reflect.Pointer:
		if source.IsNil() {
			return identityKey{}, false
		}

		ptr = source.Pointer()
	case source.CanAddr():
		ptr = source.Addr().Pointer()
	default:
		return identityKey{}, false
	}

	return identityKey{ptr: ptr, source: node.Base(source.Type()), target: node.Base(targetType)}, true
}
