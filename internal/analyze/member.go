package analyze

import (
	"errors"
	"fmt"
	"reflect"

	"object-mapper/internal/common"
	"object-mapper/node"
)

var (
	ErrNotReadable = errors.New("member is not readable")
	ErrNotWritable = errors.New("member is not writable")
	ErrNilOwner    = errors.New("member owner is nil")
)

// MemberKind represents how a member is accessed.
type MemberKind int

const (
	MemberRoot MemberKind = iota
	MemberField
	MemberGetter               // GetX() T, optionally paired with SetX(T)
	MemberSetter               // SetX(T) without a matching getter
	MemberConstructorParameter // synthetic, one per constructor function parameter
	MemberElement              // synthetic, the element of a collection
)

// String returns a human-readable representation of the MemberKind.
func (k MemberKind) String() string {
	switch k {
	case MemberRoot:
		return "root"
	case MemberField:
		return "field"
	case MemberGetter:
		return "getter"
	case MemberSetter:
		return "setter"
	case MemberConstructorParameter:
		return "parameter"
	case MemberElement:
		return "element"
	default:
		return common.UnknownStr
	}
}

// Shape classifies the value of a member for mapping purposes.
type Shape int

const (
	ShapeUnsupported Shape = iota
	ShapeSimple            // scalars, time values, text types, maps
	ShapeEnumerable        // slices, arrays, sets
	ShapeComplex           // structs and interfaces
)

// String returns a human-readable representation of the Shape.
func (s Shape) String() string {
	switch s {
	case ShapeSimple:
		return "simple"
	case ShapeEnumerable:
		return "enumerable"
	case ShapeComplex:
		return "complex"
	default:
		return "unsupported"
	}
}

// ShapeOf returns the shape of values of t, pointers stripped.
func ShapeOf(t reflect.Type) Shape {
	switch node.Classify(t) {
	case node.DispatcherPrimitive, node.DispatcherMap:
		return ShapeSimple
	case node.DispatcherSlice, node.DispatcherArray, node.DispatcherSet:
		return ShapeEnumerable
	case node.DispatcherStruct, node.DispatcherInterface:
		return ShapeComplex
	default:
		return ShapeUnsupported
	}
}

// Member describes one accessible member of a type. Members are immutable once discovered.
type Member struct {
	Name          string
	Kind          MemberKind
	DeclaringType reflect.Type
	Type          reflect.Type
	Shape         Shape
	ElementType   reflect.Type // For enumerables, the element type

	Index    []int  // For fields, the index sequence for FieldByIndex
	Getter   string // Method names for accessor members
	Setter   string
	Position int // For parameters, the position in the constructor signature

	Readable bool
	Writable bool
}

func newMember(name string, kind MemberKind, declaring, typ reflect.Type) *Member {
	return &Member{
		Name:          name,
		Kind:          kind,
		DeclaringType: declaring,
		Type:          typ,
		Shape:         ShapeOf(typ),
		ElementType:   node.ElementType(typ),
	}
}

func (m *Member) IsSimple() bool     { return m.Shape == ShapeSimple }
func (m *Member) IsEnumerable() bool { return m.Shape == ShapeEnumerable }
func (m *Member) IsComplex() bool    { return m.Shape == ShapeComplex }

// String returns "Type.Name" for diagnostics.
func (m *Member) String() string {
	return common.TypeName(m.DeclaringType) + "." + m.Name
}

// withType returns a copy of the member holding values of a more specific runtime type.
func (m *Member) withType(runtime reflect.Type) *Member {
	cp := *m
	cp.Type = runtime
	cp.Shape = ShapeOf(runtime)
	cp.ElementType = node.ElementType(runtime)

	return &cp
}

// Get reads the member from owner, a value of the declaring type or a pointer to it.
// The second result is false when there is no value to read: a nil owner or a nil
// embedded struct pointer on the way to a promoted field.
func (m *Member) Get(owner reflect.Value) (reflect.Value, bool) {
	if m.Kind == MemberRoot {
		return owner, owner.IsValid()
	}

	owner, ok := indirect(owner)
	if !ok || !m.Readable {
		return reflect.Value{}, false
	}

	switch m.Kind {
	case MemberField:
		v, err := owner.FieldByIndexErr(m.Index)
		if err != nil {
			return reflect.Value{}, false
		}

		return v, true

	case MemberGetter:
		method := methodOf(owner, m.Getter)
		if !method.IsValid() {
			return reflect.Value{}, false
		}

		return method.Call(nil)[0], true
	}

	return reflect.Value{}, false
}

// Set writes v into the member of owner. Owner must be a non-nil pointer or an addressable
// struct; nil embedded struct pointers are allocated on the way to promoted fields.
func (m *Member) Set(owner, v reflect.Value) error {
	if !m.Writable {
		return fmt.Errorf("%w: %s", ErrNotWritable, m)
	}

	owner, ok := indirect(owner)
	if !ok || !owner.CanAddr() {
		return fmt.Errorf("%w: %s", ErrNilOwner, m)
	}

	if !v.IsValid() {
		v = reflect.Zero(m.Type)
	}

	switch m.Kind {
	case MemberField:
		field := fieldByIndexAlloc(owner, m.Index)
		if !field.CanSet() {
			return fmt.Errorf("%w: %s", ErrNotWritable, m)
		}

		field.Set(v)

		return nil

	case MemberGetter, MemberSetter:
		owner.Addr().MethodByName(m.Setter).Call([]reflect.Value{v})

		return nil
	}

	return fmt.Errorf("%w: %s", ErrNotWritable, m)
}

// indirect strips pointers and interfaces until a struct value is reached.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		v = v.Elem()
	}

	return v, v.IsValid()
}

func methodOf(owner reflect.Value, name string) reflect.Value {
	if owner.CanAddr() {
		return owner.Addr().MethodByName(name)
	}

	if method := owner.MethodByName(name); method.IsValid() {
		return method
	}

	// pointer receiver on an unaddressable copy
	ptr := reflect.New(owner.Type())
	ptr.Elem().Set(owner)

	return ptr.MethodByName(name)
}

func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	return v
}
