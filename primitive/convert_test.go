package primitive_test

import (
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/primitive"
)

type FooStringEnum string
type BarStringEnum string
type LevelEnum int

const (
	FooActive FooStringEnum = "active"
	BarActive BarStringEnum = "active"
)

func (e BarStringEnum) IsValid() bool { return e == BarActive }

func (l LevelEnum) String() string {
	switch l {
	case 1:
		return "active"
	default:
		return "unknown"
	}
}

func TestCanConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     reflect.Type
		dst     reflect.Type
		allowed primitive.CategoryEnum
		want    bool
	}{
		{"identical", reflect.TypeFor[int](), reflect.TypeFor[int](), primitive.CategoryNone, true},
		{"pointer to value", reflect.TypeFor[*string](), reflect.TypeFor[string](), primitive.CategoryNone, true},
		{"named to builtin", reflect.TypeFor[FooStringEnum](), reflect.TypeFor[string](), primitive.CategoryNone, true},
		{"safe widening", reflect.TypeFor[int32](), reflect.TypeFor[int64](), primitive.CategorySafeNumber, true},
		{"narrowing needs unsafe", reflect.TypeFor[int64](), reflect.TypeFor[int8](), primitive.CategorySafeNumber, false},
		{"narrowing allowed", reflect.TypeFor[int64](), reflect.TypeFor[uint](), primitive.CategoryUnsafeNumber, true},
		{"text number", reflect.TypeFor[string](), reflect.TypeFor[float64](), primitive.CategoryTextNumber, true},
		{"text number disabled", reflect.TypeFor[string](), reflect.TypeFor[float64](), primitive.CategorySafeNumber, false},
		{"text type", reflect.TypeFor[string](), reflect.TypeFor[netip.Addr](), primitive.CategoryText, true},
		{"struct is not scalar", reflect.TypeFor[struct{ A int }](), reflect.TypeFor[string](), primitive.CategoryAll, false},
		{"any accepts everything", reflect.TypeFor[struct{ A int }](), reflect.TypeFor[any](), primitive.CategoryNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, primitive.CanConvert(tt.src, tt.dst, tt.allowed))
		})
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		src  any
		dst  reflect.Type
		want any
	}{
		{"int to string", 1234, reflect.TypeFor[string](), "1234"},
		{"string to uint16", "65535", reflect.TypeFor[uint16](), uint16(65535)},
		{"float to int", 12.0, reflect.TypeFor[int](), 12},
		{"bool to string", true, reflect.TypeFor[string](), "true"},
		{"textual bool", "yes", reflect.TypeFor[bool](), true},
		{"numeric bool", 1, reflect.TypeFor[bool](), true},
		{"datetime", "2024-05-01T12:00:00Z", reflect.TypeFor[time.Time](), stamp},
		{"timestamp", stamp, reflect.TypeFor[int64](), stamp.Unix()},
		{"duration", "2h45m", reflect.TypeFor[time.Duration](), 2*time.Hour + 45*time.Minute},
		{"seconds", 1.5, reflect.TypeFor[time.Duration](), 1500 * time.Millisecond},
		{"enum to enum", FooActive, reflect.TypeFor[BarStringEnum](), BarActive},
		{"stringer enum", LevelEnum(1), reflect.TypeFor[string](), "active"},
		{"string to text", "10.0.0.1", reflect.TypeFor[netip.Addr](), netip.MustParseAddr("10.0.0.1")},
		{"text to string", netip.MustParseAddr("10.0.0.1"), reflect.TypeFor[string](), "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := primitive.Convert(reflect.ValueOf(tt.src), tt.dst, primitive.CategoryAll)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Interface(), spew.Sdump(out.Interface()))
		})
	}
}

func TestConvertFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  any
		dst  reflect.Type
		err  error
	}{
		{"overflow", 300, reflect.TypeFor[uint8](), primitive.ErrConversionFailed},
		{"negative to unsigned", -1, reflect.TypeFor[uint](), primitive.ErrConversionFailed},
		{"not a number", "abc", reflect.TypeFor[int](), primitive.ErrConversionFailed},
		{"numeric bool out of range", 2, reflect.TypeFor[bool](), primitive.ErrConversionFailed},
		{"invalid enum", "inactive", reflect.TypeFor[BarStringEnum](), primitive.ErrConversionFailed},
		{"no converter", []int{1}, reflect.TypeFor[string](), primitive.ErrUnsupportedConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := primitive.Convert(reflect.ValueOf(tt.src), tt.dst, primitive.CategoryAll)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConvertPointers(t *testing.T) {
	t.Parallel()

	var missing *int
	out, err := primitive.Convert(reflect.ValueOf(missing), reflect.TypeFor[string](), primitive.CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, "", out.Interface())

	value := 7
	out, err = primitive.Convert(reflect.ValueOf(&value), reflect.TypeFor[**int64](), primitive.CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, int64(7), **(out.Interface().(**int64)))
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, primitive.Equal(reflect.ValueOf("12"), reflect.ValueOf(12), primitive.CategoryAll))
	assert.False(t, primitive.Equal(reflect.ValueOf("x"), reflect.ValueOf(12), primitive.CategoryAll))
	assert.False(t, primitive.Equal(reflect.ValueOf("12"), reflect.ValueOf(12), primitive.CategorySafeNumber))
}
