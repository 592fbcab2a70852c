package match

import (
	"reflect"

	"object-mapper/node"
	"object-mapper/primitive"
)

// TypeCompatibility represents the level of compatibility between two types.
type TypeCompatibility int

const (
	// TypeIncompatible means the types cannot be converted.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsTransform means a converter or a nested mapping is required.
	TypeNeedsTransform
	// TypeConvertible means types are convertible using Go's type conversion.
	TypeConvertible
	// TypeAssignable means the source type can be directly assigned to the target.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical      = "identical"
	VerdictAssignable     = "assignable"
	VerdictConvertible    = "convertible"
	VerdictNeedsTransform = "needs_transform"
	VerdictIncompatible   = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypeNeedsTransform:
		return VerdictNeedsTransform
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return "unknown"
	}
}

// Score returns a numeric score for sorting (higher is better).
func (c TypeCompatibility) Score() int {
	return int(c)
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	SourceType    string
	TargetType    string
}

// ScoreTypeCompatibility determines how a value of the source type can populate the target type.
func ScoreTypeCompatibility(source, target reflect.Type) TypeCompatibilityResult {
	result := TypeCompatibilityResult{
		Compatibility: TypeIncompatible,
		Reason:        "types are not compatible",
		SourceType:    typeString(source),
		TargetType:    typeString(target),
	}

	switch {
	case source == nil || target == nil:
		result.Reason = "type information unavailable"
	case source == target:
		result.Compatibility, result.Reason = TypeIdentical, "types are identical"
	case source.AssignableTo(target):
		result.Compatibility, result.Reason = TypeAssignable, "source is assignable to target"
	case sameKindClass(source, target) && source.ConvertibleTo(target):
		result.Compatibility, result.Reason = TypeConvertible, "source is convertible to target"
	case node.Dispatch(source, target, primitive.CategoryAll) != node.DispatcherUnknown:
		result.Compatibility, result.Reason = TypeNeedsTransform, "types require a converter or a nested mapping"
	}

	return result
}

// sameKindClass reports whether source and target share a kind or are both numbers.
// int to string is convertible for reflect, but it is not a value conversion.
func sameKindClass(source, target reflect.Type) bool {
	if source.Kind() == target.Kind() {
		return true
	}

	return primitive.Underlying(source).IsNumber() && primitive.Underlying(target).IsNumber()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
