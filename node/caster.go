package node

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"

	"object-mapper/utils"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
	ErrIsNotAnAction        = errors.New("provided function is not a recognizable action")
)

// Caster is a validated user function producing a value from mapping arguments.
type Caster struct {
	In           []reflect.Type
	Dst          reflect.Type // nil for actions
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// ParseCaster inspects the provided function and returns a Caster struct if it is a valid caster function.
//
// Supports interfaces:
//   - func(args...) (dst Type)
//   - func(args...) (dst Type, bool)
//   - func(args...) (dst Type, error)
//   - func(args...) (dst Type, bool, error)
//
// A false bool result means "no value".
func ParseCaster(fn any) (Caster, error) {
	caster, fnType, err := parseFunc(fn)
	if err != nil {
		return Caster{}, err
	}

	if fnType.NumOut() == 0 {
		return Caster{}, ErrIsNotACaster
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Pointer && dst.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	caster.Dst = dst

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case isError(last):
			caster.HasErr = true
		}
		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true
		return caster, nil
	}
}

// ParseAction inspects a side-effecting function: func(args...) or func(args...) error.
func ParseAction(fn any) (Caster, error) {
	action, fnType, err := parseFunc(fn)
	if err != nil {
		return Caster{}, err
	}

	switch {
	case fnType.NumOut() == 0:
		return action, nil
	case fnType.NumOut() == 1 && isError(fnType.Out(0)):
		action.HasErr = true
		return action, nil
	default:
		return Caster{}, ErrIsNotAnAction
	}
}

func parseFunc(fn any) (Caster, reflect.Type, error) {
	if fn == nil {
		return Caster{}, nil, ErrCasterIsNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func || fnVal.IsNil() {
		return Caster{}, nil, ErrCasterIsNotAFunction
	}

	if fnType.IsVariadic() {
		return Caster{}, nil, ErrIsNotACaster
	}

	in := make([]reflect.Type, fnType.NumIn())
	for i := range in {
		in[i] = fnType.In(i)
		if in[i].Kind() == reflect.Pointer && in[i].Elem().Kind() == reflect.Pointer {
			return Caster{}, nil, ErrDoublePointer
		}
	}

	// "object-mapper/store.NewOrder" -> "store", "NewOrder"
	alias, name := utils.Unpack2(strings.SplitN(utils.Second(path.Split(funcName(fnVal))), ".", 2))

	return Caster{
		In:           in,
		Name:         name,
		PackageAlias: alias,
		fn:           fnVal,
	}, fnType, nil
}

func funcName(fn reflect.Value) string {
	if pc := runtime.FuncForPC(fn.Pointer()); pc != nil {
		return pc.Name()
	}

	return ""
}

// String returns "alias.Name" for diagnostics.
func (c Caster) String() string {
	if c.PackageAlias == "" {
		return c.Name
	}

	return c.PackageAlias + "." + c.Name
}

// Call invokes the function. Arguments are matched to parameters by position and adapted
// between values and pointers; missing or nil arguments become zero values.
func (c Caster) Call(args ...reflect.Value) (value reflect.Value, ok bool, err error) {
	in := make([]reflect.Value, len(c.In))
	for i, param := range c.In {
		var arg reflect.Value
		if i < len(args) {
			arg = args[i]
		}

		in[i], err = adaptArg(arg, param)
		if err != nil {
			return reflect.Value{}, false, fmt.Errorf("%s argument %d: %w", c, i, err)
		}
	}

	out := c.fn.Call(in)

	if c.HasErr {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return reflect.Value{}, false, errVal.Interface().(error)
		}
	}

	if c.Dst == nil {
		return reflect.Value{}, true, nil
	}

	ok = true
	if c.HasBool {
		ok = out[1].Bool()
	}

	return out[0], ok, nil
}

func adaptArg(arg reflect.Value, param reflect.Type) (reflect.Value, error) {
	for arg.IsValid() && arg.Kind() == reflect.Interface {
		arg = arg.Elem()
	}

	switch {
	case !arg.IsValid():
		return reflect.Zero(param), nil
	case arg.Type().AssignableTo(param):
		return arg, nil
	case arg.Kind() == reflect.Pointer && arg.IsNil():
		return reflect.Zero(param), nil
	case arg.Kind() == reflect.Pointer && arg.Elem().Type().AssignableTo(param):
		return arg.Elem(), nil
	case param.Kind() == reflect.Pointer && arg.Type().AssignableTo(param.Elem()):
		if arg.CanAddr() {
			return arg.Addr(), nil
		}

		ptr := reflect.New(arg.Type())
		ptr.Elem().Set(arg)

		return ptr, nil
	}

	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", typeStr(arg.Type()), typeStr(param))
}
