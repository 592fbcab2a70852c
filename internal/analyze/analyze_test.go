package analyze

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/internal/match"
)

type Audit struct {
	CreatedBy string
}

type Contact struct {
	Email string
}

type hidden struct {
	Hidden string
}

type Address struct {
	Line1    string
	Postcode *string
}

type Customer struct {
	Audit
	*Contact

	ID      int
	Name    string
	Address *Address
	Tags    []string
	hidden

	secret   string
	nickname string
	OnSave   func()
}

func (c Customer) GetDisplay() string      { return c.Name + c.secret }
func (c *Customer) GetName() string        { return "shadowed" }
func (c *Customer) GetNickname() string    { return c.nickname }
func (c *Customer) SetNickname(v string)   { c.nickname = v }
func (c *Customer) Getaway() string        { return "not an accessor" }
func (c *Customer) SetFlags(a, b bool)     {}
func (c *Customer) GetLogger(string) error { return nil }

type Wrapper struct {
	Value Inner
}

type Inner struct {
	Value int
}

type Flat struct {
	Value_Value int //nolint:revive // flattened name on purpose
}

type Product struct {
	ProductID string
	Price     float64
}

func memberNames(members []*Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}

	return names
}

func TestShapeOf(t *testing.T) {
	assert.Equal(t, ShapeSimple, ShapeOf(reflect.TypeFor[*int]()))
	assert.Equal(t, ShapeSimple, ShapeOf(reflect.TypeFor[time.Time]()))
	assert.Equal(t, ShapeSimple, ShapeOf(reflect.TypeFor[map[string]int]()))
	assert.Equal(t, ShapeEnumerable, ShapeOf(reflect.TypeFor[[]Product]()))
	assert.Equal(t, ShapeEnumerable, ShapeOf(reflect.TypeFor[map[string]struct{}]()))
	assert.Equal(t, ShapeComplex, ShapeOf(reflect.TypeFor[*Customer]()))
	assert.Equal(t, ShapeComplex, ShapeOf(reflect.TypeFor[any]()))
	assert.Equal(t, ShapeUnsupported, ShapeOf(reflect.TypeFor[chan int]()))
	assert.Equal(t, "enumerable", ShapeEnumerable.String())
	assert.Equal(t, "getter", MemberGetter.String())
	assert.Equal(t, "unknown", MemberKind(99).String())
}

func TestFinderMembers(t *testing.T) {
	f := NewFinder(match.Naming{})

	members := f.Members(reflect.TypeFor[*Customer]())
	assert.Equal(t,
		[]string{"CreatedBy", "Email", "ID", "Name", "Address", "Tags", "Display", "Nickname"},
		memberNames(members))

	// cached: identical slice and pointers
	again := f.Members(reflect.TypeFor[Customer]())
	require.Len(t, again, len(members))
	assert.Same(t, members[0], again[0])

	assert.Equal(t, MemberField, members[1].Kind)
	assert.Equal(t, []int{1, 0}, members[1].Index)
	assert.Equal(t, ShapeEnumerable, members[5].Shape)
	assert.Equal(t, reflect.TypeFor[string](), members[5].ElementType)

	display := f.Member(reflect.TypeFor[Customer](), "Display")
	require.NotNil(t, display)
	assert.Equal(t, MemberGetter, display.Kind)
	assert.True(t, display.Readable)
	assert.False(t, display.Writable)

	nickname := f.Member(reflect.TypeFor[Customer](), "Nickname")
	require.NotNil(t, nickname)
	assert.True(t, nickname.Readable)
	assert.True(t, nickname.Writable)
	assert.Equal(t, "SetNickname", nickname.Setter)

	assert.NotContains(t, memberNames(f.Writable(reflect.TypeFor[Customer]())), "Display")
	assert.Len(t, f.Readable(reflect.TypeFor[Customer]()), len(members))

	assert.Empty(t, f.Members(reflect.TypeFor[int]()))
	assert.Nil(t, f.Member(reflect.TypeFor[Customer](), "secret"))
}

func TestMemberGetSet(t *testing.T) {
	f := NewFinder(match.Naming{})
	typ := reflect.TypeFor[Customer]()

	c := &Customer{Name: "Ann", secret: "!"}
	v := reflect.ValueOf(c)

	email := f.Member(typ, "Email")
	_, ok := email.Get(v)
	assert.False(t, ok, "nil embedded pointer has no value")

	require.NoError(t, email.Set(v, reflect.ValueOf("ann@example.com")))
	require.NotNil(t, c.Contact)
	assert.Equal(t, "ann@example.com", c.Email)

	got, ok := email.Get(v)
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", got.Interface())

	nickname := f.Member(typ, "Nickname")
	require.NoError(t, nickname.Set(v, reflect.ValueOf("annie")))
	got, ok = nickname.Get(reflect.ValueOf(*c))
	require.True(t, ok, "pointer getters work on copies")
	assert.Equal(t, "annie", got.Interface())

	display := f.Member(typ, "Display")
	got, ok = display.Get(reflect.ValueOf(*c))
	require.True(t, ok)
	assert.Equal(t, "Ann!", got.Interface())
	require.ErrorIs(t, display.Set(v, reflect.ValueOf("x")), ErrNotWritable)

	name := f.Member(typ, "Name")
	require.ErrorIs(t, name.Set(reflect.ValueOf(*c), reflect.ValueOf("x")), ErrNilOwner)
	require.ErrorIs(t, name.Set(reflect.ValueOf((*Customer)(nil)), reflect.ValueOf("x")), ErrNilOwner)

	require.NoError(t, name.Set(v, reflect.Value{}))
	assert.Empty(t, c.Name, "invalid value writes zero")
}

func TestQualifiedMember(t *testing.T) {
	f := NewFinder(match.NewNaming(nil, nil, nil))

	root := f.Root(reflect.TypeFor[Wrapper]())
	assert.Same(t, root, f.Root(reflect.TypeFor[Wrapper]()))
	assert.True(t, root.IsRoot())
	assert.Equal(t, "", root.Path())
	assert.Equal(t, "analyze.Wrapper", root.String())

	outer := root.Append(f.Member(reflect.TypeFor[Wrapper](), "Value"))
	inner := outer.Append(f.Member(reflect.TypeFor[Inner](), "Value"))
	assert.Same(t, inner, root.AppendPath("Value", "Value"))
	assert.Nil(t, root.AppendPath("Value", "Missing"))

	assert.Equal(t, "Value.Value", inner.Path())
	assert.Equal(t, "analyze.Wrapper.Value.Value", inner.String())
	assert.Equal(t, "ValueValue", inner.RawName())
	assert.Equal(t, []string{"valuevalue"}, inner.JoinedNames())
	assert.Equal(t, 2, inner.Depth())
	assert.Same(t, root, inner.Root())
	assert.Len(t, inner.Chain(), 3)

	flat := f.Root(reflect.TypeFor[Flat]()).AppendPath("Value_Value")
	require.NotNil(t, flat)
	assert.True(t, inner.Matches(flat))
	assert.False(t, outer.Matches(flat))
	assert.True(t, outer.CouldMatch(flat))

	v, ok := inner.Read(reflect.ValueOf(Wrapper{Value: Inner{Value: 1234}}))
	require.True(t, ok)
	assert.Equal(t, 1234, v.Interface())

	assert.True(t, All.Matches(flat))
	assert.False(t, None.Matches(flat))
	assert.Equal(t, "*", All.String())
}

func TestQualifiedMemberRead(t *testing.T) {
	f := NewFinder(match.Naming{})

	line := f.Root(reflect.TypeFor[*Customer]()).AppendPath("Address", "Line1")
	require.NotNil(t, line)

	_, ok := line.Read(reflect.ValueOf(&Customer{}))
	assert.False(t, ok, "nil address")

	v, ok := line.Read(reflect.ValueOf(&Customer{Address: &Address{Line1: "Main St"}}))
	require.True(t, ok)
	assert.Equal(t, "Main St", v.Interface())
}

func TestQualifiedMemberTypes(t *testing.T) {
	f := NewFinder(match.NewNaming(nil, nil, nil))

	root := f.Root(reflect.TypeFor[Customer]())
	tags := root.AppendPath("Tags")
	assert.Equal(t, []string{"tags", "tag"}, tags.JoinedNames())

	elem := tags.Append(f.Element(tags.Type()))
	assert.Same(t, elem, tags.Append(f.Element(reflect.TypeFor[[]string]())))
	assert.Equal(t, "Tags[]", elem.Path())
	assert.Equal(t, tags.JoinedNames(), elem.JoinedNames())

	anyRoot := f.Root(reflect.TypeFor[any]())
	typed := anyRoot.WithType(reflect.TypeFor[Customer]())
	assert.Same(t, typed, anyRoot.WithType(reflect.TypeFor[Customer]()))
	assert.Same(t, anyRoot, anyRoot.WithType(reflect.TypeFor[any]()))
	assert.Equal(t, ShapeComplex, typed.Member().Shape)
	assert.Equal(t, reflect.TypeFor[Customer](), typed.Type())
	assert.False(t, typed.IsSameAs(anyRoot))

	param := root.Append(f.Parameter(reflect.TypeFor[Customer](), "name", 0, reflect.TypeFor[string]()))
	assert.Equal(t, []string{"name"}, param.JoinedNames())
	assert.True(t, param.Matches(root.AppendPath("Name")))
	assert.False(t, param.IsSameAs(root.AppendPath("Name")))
}

func TestFinderIdentifier(t *testing.T) {
	f := NewFinder(match.NewNaming(nil, nil, []string{"Code"}))

	id := f.Identifier(reflect.TypeFor[*Product]())
	require.NotNil(t, id)
	assert.Equal(t, "ProductID", id.Name)

	id = f.Identifier(reflect.TypeFor[Customer]())
	require.NotNil(t, id)
	assert.Equal(t, "ID", id.Name)

	assert.Nil(t, f.Identifier(reflect.TypeFor[Address]()))
	assert.Nil(t, f.Identifier(reflect.TypeFor[int]()))
}
