package primitive

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"object-mapper/utils"
)

var (
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrConversionFailed      = errors.New("conversion failed")
)

var (
	stringerType = reflect.TypeFor[fmt.Stringer]()
	validType    = reflect.TypeFor[interface{ IsValid() bool }]()
)

// CanConvert reports whether values of src can be converted to dst within the allowed categories.
// Pointer layers on both sides are transparent.
func CanConvert(src, dst reflect.Type, allowed CategoryEnum) bool {
	if src == nil || dst == nil {
		return false
	}

	_, _, ok := lookup(deref(src), deref(dst), allowed)

	return ok
}

// Convert converts v to dst. A nil pointer yields the zero value of dst.
func Convert(v reflect.Value, dst reflect.Type, allowed CategoryEnum) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(dst), nil
	}

	if v.Type() == dst {
		return v, nil
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(dst), nil
		}

		v = v.Elem()
	}

	base := deref(dst)

	from, to, ok := lookup(v.Type(), base, allowed)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, v.Type(), dst)
	}

	out, err := convertScalar(v, base, from, to)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s: %w", ErrConversionFailed, v.Type(), dst, err)
	}

	return wrapPointers(out, dst), nil
}

// Equal reports whether a converted to the type of b equals b.
// Values that fail to convert are never equal.
func Equal(a, b reflect.Value, allowed CategoryEnum) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}

	converted, err := Convert(a, b.Type(), allowed)
	if err != nil || !converted.Type().Comparable() {
		return false
	}

	return converted.Equal(b)
}

// lookup selects the kind pair that converts src into dst.
// Zero kinds mean a direct reflect conversion.
func lookup(src, dst reflect.Type, allowed CategoryEnum) (from, to KindEnum, ok bool) {
	switch {
	case src == dst, src.AssignableTo(dst):
		return 0, 0, true
	case src.Kind() == dst.Kind() && isScalar(src.Kind()) && src.ConvertibleTo(dst) && !dst.Implements(validType):
		return 0, 0, true
	}

	from, to = FromReflectType(src), FromReflectType(dst)
	if from == 0 || to == 0 {
		return 0, 0, false
	}

	if IsAllowed(ConversionPair{from, to}, allowed) {
		return from, to, true
	}

	// named scalar types fall back to the builtin type they are declared on
	from, to = Underlying(src), Underlying(dst)
	if IsAllowed(ConversionPair{from, to}, allowed) {
		return from, to, true
	}

	return 0, 0, false
}

func convertScalar(v reflect.Value, dst reflect.Type, from, to KindEnum) (reflect.Value, error) {
	out := reflect.New(dst).Elem()

	switch {
	case from == 0 && to == 0:
		return v.Convert(dst), nil

	case from == KindPrimitiveEnum || to == KindPrimitiveEnum:
		return convertEnum(v, out)

	case from == KindText || to == KindText:
		return convertText(v, out)

	case from.IsNumber() && to.IsNumber():
		return out, setNumber(out, v)

	case from == KindString && to.IsNumber():
		return out, parseNumber(out, v.String())

	case from.IsNumber() && to == KindString:
		out.SetString(formatNumber(v))
		return out, nil

	case from.IsInteger() && to == KindBool:
		n, err := integerOf(v)
		if err != nil {
			return out, err
		}

		// 0, 1 - valid, other numbers is error
		if !utils.IsInRange(0, n, 1) {
			return out, fmt.Errorf("only numbers 0 and 1 are allowed for bool, got: %d", n)
		}

		out.SetBool(n == 1)
		return out, nil

	case from == KindBool && to.IsInteger():
		var n int64
		if v.Bool() {
			n = 1
		}

		return out, setInteger(out, n)

	case from == KindString && to == KindBool:
		b, err := parseBool(v.String())
		out.SetBool(b)
		return out, err

	case from == KindBool && to == KindString:
		out.SetString(strconv.FormatBool(v.Bool()))
		return out, nil

	case from == KindString && to == KindTime:
		t, err := time.Parse(time.RFC3339Nano, v.String())
		out.Set(reflect.ValueOf(t))
		return out, err

	case from == KindTime && to == KindString:
		out.SetString(v.Interface().(time.Time).Format(time.RFC3339Nano))
		return out, nil

	case from.IsInteger() && to == KindTime:
		n, err := integerOf(v)
		out.Set(reflect.ValueOf(time.Unix(n, 0).UTC()))
		return out, err

	case from == KindTime && to.IsInteger():
		return out, setInteger(out, v.Interface().(time.Time).Unix())

	case from == KindString && to == KindDuration:
		d, err := time.ParseDuration(v.String())
		out.SetInt(int64(d))
		return out, err

	case from == KindDuration && to == KindString:
		out.SetString(time.Duration(v.Int()).String())
		return out, nil

	case from.IsInteger() && to == KindDuration:
		n, err := integerOf(v)
		out.SetInt(n)
		return out, err

	case from == KindDuration && to.IsInteger():
		return out, setInteger(out, v.Int())

	case from.IsFloat() && to == KindDuration:
		out.SetInt(int64(v.Float() * float64(time.Second)))
		return out, nil

	case from == KindDuration && to.IsFloat():
		out.SetFloat(time.Duration(v.Int()).Seconds())
		return out, nil
	}

	return out, fmt.Errorf("no converter for %s to %s", from, to)
}

func convertEnum(v, out reflect.Value) (reflect.Value, error) {
	text := enumString(v)

	switch out.Kind() {
	case reflect.String:
		out.SetString(text)
	case reflect.Bool:
		b, err := parseBool(text)
		if err != nil {
			return out, err
		}

		out.SetBool(b)
	default:
		if err := parseNumber(out, text); err != nil {
			return out, err
		}
	}

	if out.Type().Implements(validType) && !out.Interface().(interface{ IsValid() bool }).IsValid() {
		return out, fmt.Errorf("%q is not a valid value for %s", text, out.Type())
	}

	return out, nil
}

func enumString(v reflect.Value) string {
	if v.Type().Implements(stringerType) {
		return v.Interface().(fmt.Stringer).String()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return formatNumber(v)
	}
}

func convertText(v, out reflect.Value) (reflect.Value, error) {
	var text []byte

	if v.Kind() == reflect.String {
		text = []byte(v.String())
	} else {
		holder := reflect.New(v.Type())
		holder.Elem().Set(v)

		marshaled, err := holder.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return out, err
		}

		text = marshaled
	}

	if out.Kind() == reflect.String {
		out.SetString(string(text))
		return out, nil
	}

	err := out.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText(text)

	return out, err
}

func setNumber(out, v reflect.Value) error {
	switch {
	case v.CanInt():
		return setInteger(out, v.Int())
	case v.CanUint():
		n := v.Uint()
		if out.CanInt() && (n > math.MaxInt64 || out.OverflowInt(int64(n))) {
			return fmt.Errorf("%d overflows %s", n, out.Type())
		}

		if out.CanInt() {
			out.SetInt(int64(n))
			return nil
		}

		if out.CanUint() {
			if out.OverflowUint(n) {
				return fmt.Errorf("%d overflows %s", n, out.Type())
			}

			out.SetUint(n)
			return nil
		}

		out.SetFloat(float64(n))
		return nil
	default:
		f := v.Float()
		if out.CanFloat() {
			if out.OverflowFloat(f) {
				return fmt.Errorf("%g overflows %s", f, out.Type())
			}

			out.SetFloat(f)
			return nil
		}

		if f != math.Trunc(f) {
			return fmt.Errorf("%g is not an integer", f)
		}

		if out.CanUint() {
			if f < 0 || out.OverflowUint(uint64(f)) {
				return fmt.Errorf("%g overflows %s", f, out.Type())
			}

			out.SetUint(uint64(f))
			return nil
		}

		return setInteger(out, int64(f))
	}
}

func setInteger(out reflect.Value, n int64) error {
	switch {
	case out.CanInt():
		if out.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, out.Type())
		}

		out.SetInt(n)
	case out.CanUint():
		if n < 0 || out.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, out.Type())
		}

		out.SetUint(uint64(n))
	default:
		out.SetFloat(float64(n))
	}

	return nil
}

func integerOf(v reflect.Value) (int64, error) {
	if v.CanUint() {
		n := v.Uint()
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", n)
		}

		return int64(n), nil
	}

	return v.Int(), nil
}

func parseNumber(out reflect.Value, text string) error {
	text = strings.TrimSpace(text)

	switch {
	case out.CanInt():
		n, err := strconv.ParseInt(text, 10, out.Type().Bits())
		out.SetInt(n)
		return err
	case out.CanUint():
		n, err := strconv.ParseUint(text, 10, out.Type().Bits())
		out.SetUint(n)
		return err
	default:
		f, err := strconv.ParseFloat(text, out.Type().Bits())
		out.SetFloat(f)
		return err
	}
}

func formatNumber(v reflect.Value) string {
	switch {
	case v.CanInt():
		return strconv.FormatInt(v.Int(), 10)
	case v.CanUint():
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return strconv.FormatFloat(v.Float(), 'f', -1, v.Type().Bits())
	}
}

func parseBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	default:
		return false, fmt.Errorf("only strings true/false, yes/no, on/off are allowed for bool, got: %s", text)
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
}

func isScalar(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func wrapPointers(v reflect.Value, dst reflect.Type) reflect.Value {
	if dst.Kind() != reflect.Pointer {
		return v
	}

	ptr := reflect.New(dst.Elem())
	ptr.Elem().Set(wrapPointers(v, dst.Elem()))

	return ptr
}
