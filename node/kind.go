package node

//go:generate go tool stringer -type=DispatcherEnum -trimprefix=Dispatcher -output=dispatcherenum_string.go

// DispatcherEnum classifies a type by the way values of it are mapped.
type DispatcherEnum int

const (
	DispatcherUnknown   DispatcherEnum = iota // functions, channels and other unmappable types
	DispatcherPrimitive                       // scalars, converted as a single value
	DispatcherInterface                       // interfaces, mapped through their runtime type
	DispatcherSlice
	DispatcherArray
	DispatcherSet // map[K]struct{} and map[K]bool
	DispatcherMap // other maps are assigned as a whole
	DispatcherStruct

	// DispatcherTotal is a constant that represents the total number of kinds defined
	DispatcherTotal = int(iota)
)

// IsEnumerable reports whether the class is a collection reconciled element by element.
func (d DispatcherEnum) IsEnumerable() bool {
	return d == DispatcherSlice || d == DispatcherArray || d == DispatcherSet
}

// IsComplex reports whether the class is an object graph node with members.
func (d DispatcherEnum) IsComplex() bool {
	return d == DispatcherStruct || d == DispatcherInterface
}
