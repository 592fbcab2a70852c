package plan

import (
	"reflect"

	"object-mapper/internal/analyze"
	"object-mapper/internal/common"
	"object-mapper/internal/config"
	"object-mapper/internal/diagnostic"
	"object-mapper/node"
)

// Key identifies a compiled plan. Types are stored with pointers stripped.
type Key struct {
	RuleSet    config.RuleSet
	SourceType reflect.Type // declared source type
	TargetType reflect.Type // declared target type
	// RuntimeSource and RuntimeTarget hold the concrete types when they differ from the
	// declared ones, e.g. for interface members.
	RuntimeSource reflect.Type
	RuntimeTarget reflect.Type
	// RootTarget and MemberPath are set for member-scoped plans: the plan populates the
	// member at MemberPath of a RootTarget object from the same source object.
	RootTarget reflect.Type
	MemberPath string
}

// NewKey returns the key of the plan mapping source onto target under ruleSet.
func NewKey(ruleSet config.RuleSet, source, target reflect.Type) Key {
	return Key{RuleSet: ruleSet, SourceType: node.Base(source), TargetType: node.Base(target)}
}

// Source returns the effective source type.
func (k Key) Source() reflect.Type {
	if k.RuntimeSource != nil {
		return k.RuntimeSource
	}

	return k.SourceType
}

// Target returns the effective target type.
func (k Key) Target() reflect.Type {
	if k.RuntimeTarget != nil {
		return k.RuntimeTarget
	}

	return k.TargetType
}

// IsMemberScoped reports whether the plan populates a member of a larger target from
// the source object of its parent.
func (k Key) IsMemberScoped() bool {
	return k.MemberPath != ""
}

// WithRuntime returns the key for concrete runtime types. Types equal to the declared
// ones are not recorded, so keys of concrete values stay equal to their declared keys.
func (k Key) WithRuntime(source, target reflect.Type) Key {
	source, target = node.Base(source), node.Base(target)

	k.RuntimeSource, k.RuntimeTarget = nil, nil
	if source != nil && source != k.SourceType {
		k.RuntimeSource = source
	}

	if target != nil && target != k.TargetType {
		k.RuntimeTarget = target
	}

	return k
}

// String renders the key like "merge store.Order -> warehouse.Order".
func (k Key) String() string {
	s := k.RuleSet.String() + " " + common.TypeName(k.Source()) + " -> " + common.TypeName(k.Target())
	if k.IsMemberScoped() {
		s += " (" + common.TypeName(k.RootTarget) + "." + k.MemberPath + ")"
	}

	return s
}

// OpKind is the kind of one plan operation.
type OpKind int

const (
	OpShortCircuit        OpKind = iota // return early for a nil source or an already mapped target
	OpCycleGuard                        // reuse the target already mapped from the same source object
	OpCallback                          // run configured callbacks
	OpAcquire                           // reuse the existing target or construct a new one
	OpRegister                          // record the target in the mapping context
	OpPopulateMember                    // assign a simple member
	OpPopulateComplex                   // map a complex member through a child plan
	OpReconcileEnumerable               // reconcile a collection member through a child plan
	OpSkipMember                        // member left untouched, kept for descriptions
	OpReturn                            // hand the target back
)

// String returns a human-readable representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpShortCircuit:
		return "short-circuit"
	case OpCycleGuard:
		return "cycle-guard"
	case OpCallback:
		return "callback"
	case OpAcquire:
		return "acquire"
	case OpRegister:
		return "register"
	case OpPopulateMember:
		return "populate"
	case OpPopulateComplex:
		return "populate-complex"
	case OpReconcileEnumerable:
		return "reconcile"
	case OpSkipMember:
		return "skip"
	case OpReturn:
		return "return"
	default:
		return common.UnknownStr
	}
}

// Operation is one step of a complex plan.
type Operation struct {
	Kind OpKind
	// Target is the member written by member operations, relative to the plan target.
	Target *analyze.QualifiedMember
	// Sources supply the member value.
	Sources *DataSourceSet
	// Construction acquires new targets for OpAcquire.
	Construction *Construction
	// Callbacks are run in order by OpCallback.
	Callbacks []*config.Callback
	// Child is the plan mapping the member value. For type-pair children it is the key
	// of the declared types; runtime types may select a different plan.
	Child Key
	// Reason explains skipped members.
	Reason string
}

// Plan is the compiled mapping of one key.
type Plan struct {
	Key   Key
	Shape analyze.Shape
	// Source is the root of the source object the plan reads from.
	Source *analyze.QualifiedMember
	// Target is the populated object: a root, or a member for member-scoped plans.
	Target *analyze.QualifiedMember
	// Ops holds the steps of complex plans.
	Ops []Operation
	// Enumerable holds the reconciliation of enumerable plans.
	Enumerable *EnumerablePlan
	// Diagnostics reports unmapped and ignored members.
	Diagnostics diagnostic.Diagnostics
}

// Children returns the keys of the plans this plan may execute, in operation order.
func (p *Plan) Children() []Key {
	var keys []Key

	for _, op := range p.Ops {
		if op.Kind == OpPopulateComplex || op.Kind == OpReconcileEnumerable {
			keys = append(keys, op.Child)
		}
	}

	if p.Enumerable != nil && p.Enumerable.ElementKey != nil {
		keys = append(keys, *p.Enumerable.ElementKey)
	}

	return keys
}

// Construction returns the construction of a complex plan, or nil.
func (p *Plan) Construction() *Construction {
	for _, op := range p.Ops {
		if op.Kind == OpAcquire {
			return op.Construction
		}
	}

	return nil
}

// SourceKind tells where a data source value comes from.
type SourceKind int

const (
	SourceNone       SourceKind = iota // no value, the member is left alone
	SourceConfigured                   // a configured function, constant or source path
	SourceMember                       // a matched source member
)

// String returns a human-readable representation of the SourceKind.
func (k SourceKind) String() string {
	switch k {
	case SourceNone:
		return "none"
	case SourceConfigured:
		return "configured"
	case SourceMember:
		return "member"
	default:
		return common.UnknownStr
	}
}

// DataSource is one candidate value of a target member.
type DataSource struct {
	Kind SourceKind
	// Member is the source chain read from the source object: the matched member, or
	// the member a configured SourcePath points to.
	Member *analyze.QualifiedMember
	// Configured is the configuration item of SourceConfigured data sources.
	Configured *config.DataSource
	// Type is the static type of the value.
	Type reflect.Type
}

// Conditional reports whether the data source applies only when its condition holds.
func (d DataSource) Conditional() bool {
	return d.Configured != nil && d.Configured.Condition != nil
}

// String describes the value for plan descriptions.
func (d DataSource) String() string {
	switch {
	case d.Member != nil:
		return "source." + d.Member.Path()
	case d.Configured != nil:
		return d.Configured.String()
	default:
		return "none"
	}
}

// DataSourceSet holds the ordered data sources of one target member: conditional
// configured sources first, then the unconditional value.
type DataSourceSet struct {
	Target  *analyze.QualifiedMember
	Sources []DataSource
	// Ignores are conditional ignores; the member is skipped when one holds.
	Ignores []*config.Ignore
}

// HasValue reports whether some data source may supply a value.
func (s *DataSourceSet) HasValue() bool {
	if s == nil {
		return false
	}

	for _, ds := range s.Sources {
		if ds.Kind != SourceNone {
			return true
		}
	}

	return false
}

// Type returns the static type of the first data source, or nil.
func (s *DataSourceSet) Type() reflect.Type {
	if s == nil {
		return nil
	}

	for _, ds := range s.Sources {
		if ds.Type != nil {
			return ds.Type
		}
	}

	return nil
}

// EnumerablePlan describes how a source collection reconciles into a target collection.
type EnumerablePlan struct {
	Strategy EnumerableStrategy
	// SourceElem and TargetElem are the element types.
	SourceElem reflect.Type
	TargetElem reflect.Type
	// Element is the target element member, "[]" below the collection root.
	Element *analyze.QualifiedMember
	// ElementShape is the shape of target elements.
	ElementShape analyze.Shape
	// TargetKind is the collection class of the target: slice, array or set.
	TargetKind node.DispatcherEnum
	// ElementKey is the plan mapping complex or enumerable elements, nil for simple ones.
	ElementKey *Key
	// SourceID and TargetID identify elements for identity matching.
	SourceID *analyze.Member
	TargetID *analyze.Member
}

// Identifiable reports whether elements are matched by identity.
func (e *EnumerablePlan) Identifiable() bool {
	return e.SourceID != nil && e.TargetID != nil
}
