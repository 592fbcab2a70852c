package node

import (
	"reflect"

	"object-mapper/primitive"
)

// Classify returns the dispatcher class of t with pointer layers stripped.
func Classify(t reflect.Type) DispatcherEnum {
	t = Base(t)
	if t == nil {
		return DispatcherUnknown
	}

	if primitive.FromReflectType(t) != 0 {
		return DispatcherPrimitive
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return DispatcherPrimitive
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return DispatcherPrimitive // []byte is a blob, not a collection
		}

		return DispatcherSlice
	case reflect.Array:
		return DispatcherArray
	case reflect.Map:
		if IsSet(t) {
			return DispatcherSet
		}

		return DispatcherMap
	case reflect.Struct:
		return DispatcherStruct
	case reflect.Interface:
		return DispatcherInterface
	default:
		return DispatcherUnknown
	}
}

// IsSet reports whether t is a map used as a set: map[K]struct{} or map[K]bool.
func IsSet(t reflect.Type) bool {
	if t.Kind() != reflect.Map {
		return false
	}

	elem := t.Elem()

	return (elem.Kind() == reflect.Struct && elem.NumField() == 0) || elem.Kind() == reflect.Bool
}

// ElementType returns the element type of an enumerable type, or nil.
func ElementType(t reflect.Type) reflect.Type {
	t = Base(t)

	switch Classify(t) {
	case DispatcherSlice, DispatcherArray:
		return t.Elem()
	case DispatcherSet:
		return t.Key()
	default:
		return nil
	}
}

// Dispatch decides how a source of type src populates a target of type dst.
// It returns DispatcherUnknown when the pair cannot be mapped.
func Dispatch(src, dst reflect.Type, allowed primitive.CategoryEnum) DispatcherEnum {
	srcClass, dstClass := Classify(src), Classify(dst)

	switch {
	case dstClass == DispatcherPrimitive || dstClass == DispatcherMap:
		if primitive.CanConvert(src, dst, allowed) {
			return dstClass
		}

		return DispatcherUnknown

	case dstClass.IsComplex():
		if srcClass.IsComplex() {
			return dstClass
		}

		return DispatcherUnknown

	case dstClass.IsEnumerable():
		if !srcClass.IsEnumerable() {
			return DispatcherUnknown
		}

		srcElem, dstElem := ElementType(src), ElementType(dst)
		if Dispatch(srcElem, dstElem, allowed) == DispatcherUnknown {
			return DispatcherUnknown
		}

		// sets only hold comparable scalars
		if dstClass == DispatcherSet && Classify(dstElem) != DispatcherPrimitive {
			return DispatcherUnknown
		}

		return dstClass
	}

	return DispatcherUnknown
}
