package analyze

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"object-mapper/internal/common"
	"object-mapper/internal/match"
	"object-mapper/node"
)

// Finder discovers the members of types and caches them for its own lifetime.
// It is safe for concurrent use.
type Finder struct {
	naming match.Naming

	mu          sync.RWMutex
	members     map[reflect.Type][]*Member
	roots       map[reflect.Type]*QualifiedMember
	identifiers map[reflect.Type]*Member
	synthetic   map[syntheticKey]*Member
}

type syntheticKey struct {
	declaring reflect.Type
	typ       reflect.Type
	name      string
	position  int
	kind      MemberKind
}

// NewFinder creates a Finder matching member names with the given naming conventions.
func NewFinder(naming match.Naming) *Finder {
	return &Finder{
		naming:      naming,
		members:     make(map[reflect.Type][]*Member),
		roots:       make(map[reflect.Type]*QualifiedMember),
		identifiers: make(map[reflect.Type]*Member),
		synthetic:   make(map[syntheticKey]*Member),
	}
}

// Naming returns the naming conventions of the finder.
func (f *Finder) Naming() match.Naming {
	return f.naming
}

// Members returns the members of t, pointers stripped, in discovery order: exported
// fields in declaration order (promoted fields at the position of their embedded
// struct), then getter and setter methods ordered by name. Non-struct types have none.
func (f *Finder) Members(t reflect.Type) []*Member {
	t = node.Base(t)
	if t == nil {
		return nil
	}

	f.mu.RLock()
	members, ok := f.members[t]
	f.mu.RUnlock()

	if ok {
		return members
	}

	members = discover(t)

	f.mu.Lock()
	defer f.mu.Unlock()

	// keep the first published list so member pointers stay stable
	if existing, ok := f.members[t]; ok {
		return existing
	}

	f.members[t] = members

	return members
}

// Readable returns the members of t that can be read.
func (f *Finder) Readable(t reflect.Type) []*Member {
	return common.Filter(f.Members(t), func(m *Member) bool { return m.Readable })
}

// Writable returns the members of t that can be written.
func (f *Finder) Writable(t reflect.Type) []*Member {
	return common.Filter(f.Members(t), func(m *Member) bool { return m.Writable })
}

// Member returns the member of t with the exact name, or nil.
func (f *Finder) Member(t reflect.Type, name string) *Member {
	for _, m := range f.Members(t) {
		if m.Name == name {
			return m
		}
	}

	return nil
}

// Root returns the qualified root member for values of t. Repeated calls return the same instance.
func (f *Finder) Root(t reflect.Type) *QualifiedMember {
	f.mu.RLock()
	root, ok := f.roots[t]
	f.mu.RUnlock()

	if ok {
		return root
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if root, ok = f.roots[t]; ok {
		return root
	}

	member := newMember(rootName(t), MemberRoot, nil, t)
	member.Readable, member.Writable = true, true

	root = newRoot(f, member)
	f.roots[t] = root

	return root
}

// Parameter returns the synthetic member of a constructor parameter.
func (f *Finder) Parameter(declaring reflect.Type, name string, position int, typ reflect.Type) *Member {
	return f.syntheticMember(syntheticKey{declaring, typ, name, position, MemberConstructorParameter}, func() *Member {
		m := newMember(name, MemberConstructorParameter, declaring, typ)
		m.Position = position
		m.Writable = true

		return m
	})
}

// Element returns the synthetic member standing for the elements of the enumerable type t.
func (f *Finder) Element(t reflect.Type) *Member {
	elem := node.ElementType(t)
	if elem == nil {
		return nil
	}

	return f.syntheticMember(syntheticKey{t, elem, "[]", 0, MemberElement}, func() *Member {
		m := newMember("[]", MemberElement, t, elem)
		m.Readable, m.Writable = true, true

		return m
	})
}

func (f *Finder) syntheticMember(key syntheticKey, create func() *Member) *Member {
	f.mu.RLock()
	m, ok := f.synthetic[key]
	f.mu.RUnlock()

	if ok {
		return m
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok = f.synthetic[key]; !ok {
		m = create()
		f.synthetic[key] = m
	}

	return m
}

// Identifier returns the simple readable member identifying values of t, or nil when
// t is not identifiable.
func (f *Finder) Identifier(t reflect.Type) *Member {
	t = node.Base(t)
	if t == nil {
		return nil
	}

	f.mu.RLock()
	id, ok := f.identifiers[t]
	f.mu.RUnlock()

	if ok {
		return id
	}

	for _, m := range f.Readable(t) {
		if m.IsSimple() && f.naming.IsIdentifier(t.Name(), m.Name) {
			id = m

			break
		}
	}

	f.mu.Lock()
	f.identifiers[t] = id
	f.mu.Unlock()

	return id
}

func discover(t reflect.Type) []*Member {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var members []*Member

	taken := make(map[string]struct{})

	for _, field := range reflect.VisibleFields(t) {
		if field.Anonymous || !field.IsExported() || !promotedThroughExported(t, field.Index) {
			continue
		}

		if ShapeOf(field.Type) == ShapeUnsupported {
			continue
		}

		m := newMember(field.Name, MemberField, t, field.Type)
		m.Index = field.Index
		m.Readable, m.Writable = true, true

		members = append(members, m)
		taken[field.Name] = struct{}{}
	}

	return append(members, discoverMethods(t, taken)...)
}

// promotedThroughExported reports whether every embedded struct on the way to the field is exported.
func promotedThroughExported(t reflect.Type, index []int) bool {
	for i := 1; i < len(index); i++ {
		if !t.FieldByIndex(index[:i]).IsExported() {
			return false
		}
	}

	return true
}

func discoverMethods(t reflect.Type, taken map[string]struct{}) []*Member {
	ptr := reflect.PointerTo(t)
	byName := make(map[string]*Member)

	var names []string

	for i := range ptr.NumMethod() {
		method := ptr.Method(i)

		name, isGetter := accessorName(method.Name, "Get")
		if !isGetter {
			if name, _ = accessorName(method.Name, "Set"); name == "" {
				continue
			}
		}

		if _, exists := taken[name]; exists {
			continue // fields win over accessors
		}

		mt := method.Type // receiver is the first argument

		switch {
		case isGetter && mt.NumIn() == 1 && mt.NumOut() == 1:
			typ := mt.Out(0)
			if ShapeOf(typ) == ShapeUnsupported {
				continue
			}

			m := byName[name]
			if m == nil {
				m = newMember(name, MemberGetter, t, typ)
				byName[name] = m
				names = append(names, name)
			} else if m.Type != typ {
				continue
			}

			m.Kind, m.Getter, m.Readable = MemberGetter, method.Name, true

		case !isGetter && mt.NumIn() == 2 && mt.NumOut() == 0:
			typ := mt.In(1)
			if ShapeOf(typ) == ShapeUnsupported {
				continue
			}

			m := byName[name]
			if m == nil {
				m = newMember(name, MemberSetter, t, typ)
				byName[name] = m
				names = append(names, name)
			} else if m.Type != typ {
				continue
			}

			m.Setter, m.Writable = method.Name, true
		}
	}

	sort.Strings(names)

	members := make([]*Member, 0, len(names))
	for _, name := range names {
		members = append(members, byName[name])
	}

	return members
}

// accessorName returns "Name" for "GetName" with prefix "Get".
func accessorName(method, prefix string) (string, bool) {
	name, ok := strings.CutPrefix(method, prefix)
	if !ok || name == "" || !unicode.IsUpper([]rune(name)[0]) {
		return "", false
	}

	return name, true
}

func rootName(t reflect.Type) string {
	if base := node.Base(t); base != nil && base.Name() != "" {
		return base.Name()
	}

	return "root"
}
