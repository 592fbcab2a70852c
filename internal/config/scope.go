package config

import (
	"reflect"
	"slices"
	"strings"

	"object-mapper/internal/common"
	"object-mapper/node"
)

// Scope limits a configuration item to source types, target types and rule sets.
// A nil type matches any type, no rule sets match every rule set.
type Scope struct {
	SourceType reflect.Type
	TargetType reflect.Type
	RuleSets   []RuleSet
}

// MemberContext identifies a target member during plan compilation.
type MemberContext struct {
	RuleSet    RuleSet
	SourceType reflect.Type // the source object the member is populated from
	TargetType reflect.Type // the target object that declares the path
	Path       string       // dotted member path relative to TargetType, empty for the object itself
}

// Child returns the context of the member name below the current path.
func (c MemberContext) Child(name string) MemberContext {
	if c.Path != "" {
		name = c.Path + "." + name
	}

	c.Path = name

	return c
}

// Covers reports whether the scope applies to ctx.
func (s Scope) Covers(ctx MemberContext) bool {
	return typeCovers(s.SourceType, ctx.SourceType) &&
		typeCovers(s.TargetType, ctx.TargetType) &&
		coversRuleSet(s.RuleSets, ctx.RuleSet)
}

// Overlaps reports whether some context is covered by both scopes.
func (s Scope) Overlaps(other Scope) bool {
	return sameOrAny(s.SourceType, other.SourceType) &&
		sameOrAny(s.TargetType, other.TargetType) &&
		overlapRuleSets(s.RuleSets, other.RuleSets)
}

// String renders the scope for error messages.
func (s Scope) String() string {
	var b strings.Builder

	b.WriteString(scopeTypeName(s.SourceType))
	b.WriteString(" -> ")
	b.WriteString(scopeTypeName(s.TargetType))

	if len(s.RuleSets) > 0 {
		names := make([]string, len(s.RuleSets))
		for i, r := range s.RuleSets {
			names[i] = r.String()
		}

		slices.Sort(names)
		b.WriteString(" [" + strings.Join(names, ",") + "]")
	}

	return b.String()
}

func scopeTypeName(t reflect.Type) string {
	if t == nil {
		return "*"
	}

	return common.TypeName(node.Base(t))
}

func typeCovers(scoped, actual reflect.Type) bool {
	if scoped == nil {
		return true
	}

	if actual == nil {
		return false
	}

	scoped, actual = node.Base(scoped), node.Base(actual)
	if scoped == actual {
		return true
	}

	return scoped.Kind() == reflect.Interface && actual.Implements(scoped)
}

func sameOrAny(a, b reflect.Type) bool {
	return a == nil || b == nil || node.Base(a) == node.Base(b)
}
