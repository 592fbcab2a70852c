package analyze

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"object-mapper/internal/common"
	"object-mapper/internal/match"
)

type sentinel int

const (
	notSentinel sentinel = iota
	sentinelAll
	sentinelNone
)

var (
	// All stands for every member of a type.
	All = &QualifiedMember{sentinel: sentinelAll}
	// None stands for no member at all.
	None = &QualifiedMember{sentinel: sentinelNone}
)

// QualifiedMember is an immutable chain of members from a mapping root to a leaf,
// with the names the chain can be matched by. Chains share their prefix with the parent.
//
// Appending the same member twice returns the identical instance, so qualified members
// can be compared by pointer and used in cache keys.
type QualifiedMember struct {
	finder *Finder
	parent *QualifiedMember
	member *Member
	depth  int

	segments []string   // raw member names, root excluded
	names    [][]string // matching names per chain element, root excluded
	joined   []string
	path     TypePath
	sentinel sentinel

	children sync.Map // childKey -> *QualifiedMember
	typed    sync.Map // reflect.Type -> *QualifiedMember
}

type childKey struct {
	name      string
	kind      MemberKind
	typ       reflect.Type
	declaring reflect.Type
	position  int
}

func newRoot(f *Finder, member *Member) *QualifiedMember {
	return &QualifiedMember{
		finder: f,
		member: member,
		joined: match.JoinedNames(nil),
	}
}

// Append returns the chain extended by member m.
func (q *QualifiedMember) Append(m *Member) *QualifiedMember {
	key := childKey{m.Name, m.Kind, m.Type, m.DeclaringType, m.Position}

	if child, ok := q.children.Load(key); ok {
		return child.(*QualifiedMember)
	}

	child, _ := q.children.LoadOrStore(key, q.newChild(m))

	return child.(*QualifiedMember)
}

// AppendPath appends the members reached by following names from the leaf type.
// It returns nil when a name is not a member.
func (q *QualifiedMember) AppendPath(names ...string) *QualifiedMember {
	current := q
	for _, name := range names {
		m := q.finder.Member(current.Type(), name)
		if m == nil {
			return nil
		}

		current = current.Append(m)
	}

	return current
}

func (q *QualifiedMember) newChild(m *Member) *QualifiedMember {
	var aliases []string
	if m.Kind == MemberElement {
		aliases = []string{""}
	} else {
		aliases = q.finder.naming.MatchingNames(m.Name, m.IsEnumerable())
	}

	names := append(slices.Clip(q.names), aliases)

	path := q.path.Field(m.Name)
	if m.Kind == MemberElement {
		path = q.path.Slice()
	}

	return &QualifiedMember{
		finder:   q.finder,
		parent:   q,
		member:   m,
		depth:    q.depth + 1,
		segments: append(slices.Clip(q.segments), m.Name),
		names:    names,
		joined:   match.JoinedNames(names),
		path:     path,
	}
}

// WithType returns the same chain with the leaf holding values of the runtime type t.
func (q *QualifiedMember) WithType(t reflect.Type) *QualifiedMember {
	if q.IsSentinel() || t == nil || t == q.member.Type {
		return q
	}

	if typed, ok := q.typed.Load(t); ok {
		return typed.(*QualifiedMember)
	}

	cp := &QualifiedMember{
		finder:   q.finder,
		parent:   q.parent,
		member:   q.member.withType(t),
		depth:    q.depth,
		segments: q.segments,
		names:    q.names,
		joined:   q.joined,
		path:     q.path,
	}

	typed, _ := q.typed.LoadOrStore(t, cp)

	return typed.(*QualifiedMember)
}

// Member returns the leaf member.
func (q *QualifiedMember) Member() *Member { return q.member }

// Type returns the type of the leaf member.
func (q *QualifiedMember) Type() reflect.Type {
	if q.member == nil {
		return nil
	}

	return q.member.Type
}

// Parent returns the chain without its leaf, nil for roots and sentinels.
func (q *QualifiedMember) Parent() *QualifiedMember { return q.parent }

// Depth returns the number of members after the root.
func (q *QualifiedMember) Depth() int { return q.depth }

func (q *QualifiedMember) IsRoot() bool     { return q.sentinel == notSentinel && q.parent == nil }
func (q *QualifiedMember) IsSentinel() bool { return q.sentinel != notSentinel }

// Root returns the first member of the chain.
func (q *QualifiedMember) Root() *QualifiedMember {
	root := q
	for root.parent != nil {
		root = root.parent
	}

	return root
}

// Chain returns the members from the root to the leaf.
func (q *QualifiedMember) Chain() []*Member {
	chain := make([]*Member, q.depth+1)
	for current := q; current != nil; current = current.parent {
		chain[current.depth] = current.member
	}

	return chain
}

// Segments returns the member names after the root.
func (q *QualifiedMember) Segments() []string { return q.segments }

// JoinedNames returns every concatenation of the matching names along the chain.
func (q *QualifiedMember) JoinedNames() []string { return q.joined }

// RawName returns the case-sensitive concatenation of the member names after the root.
func (q *QualifiedMember) RawName() string { return strings.Join(q.segments, "") }

// Path returns the dotted member path after the root, like "Items[].ProductID".
func (q *QualifiedMember) Path() string { return q.path.String() }

// Matches reports whether the chains share a joined name.
func (q *QualifiedMember) Matches(other *QualifiedMember) bool {
	if q.IsSentinel() || other.IsSentinel() {
		return q.sentinel == sentinelAll || other.sentinel == sentinelAll
	}

	return match.Matches(q.joined, other.joined)
}

// CouldMatch reports whether a chain continuing q may match other.
func (q *QualifiedMember) CouldMatch(other *QualifiedMember) bool {
	if q.IsSentinel() || other.IsSentinel() {
		return q.sentinel == sentinelAll || other.sentinel == sentinelAll
	}

	return match.CouldMatch(q.joined, other.joined)
}

// IsSameAs reports whether both chains end in the same member: same name, same type and
// compatible declaring types.
func (q *QualifiedMember) IsSameAs(other *QualifiedMember) bool {
	if q == other {
		return true
	}

	if q.IsSentinel() || other.IsSentinel() {
		return false
	}

	a, b := q.member, other.member
	if a.Name != b.Name || a.Type != b.Type {
		return false
	}

	switch {
	case a.DeclaringType == b.DeclaringType:
		return true
	case a.DeclaringType == nil || b.DeclaringType == nil:
		return false
	default:
		return a.DeclaringType.AssignableTo(b.DeclaringType) || b.DeclaringType.AssignableTo(a.DeclaringType)
	}
}

// Read follows the chain from root, a value of the root type. It returns false when a
// member on the way has no value: a nil pointer, a nil embedded struct or an element.
func (q *QualifiedMember) Read(root reflect.Value) (reflect.Value, bool) {
	if q.IsSentinel() {
		return reflect.Value{}, false
	}

	v := root
	for _, m := range q.Chain()[1:] {
		var ok bool
		if v, ok = m.Get(v); !ok {
			return reflect.Value{}, false
		}
	}

	return v, v.IsValid()
}

// String returns the root type followed by the member path.
func (q *QualifiedMember) String() string {
	switch q.sentinel {
	case sentinelAll:
		return "*"
	case sentinelNone:
		return "-"
	}

	name := common.TypeName(q.Root().Type())
	if q.depth == 0 {
		return name
	}

	return name + "." + q.Path()
}
