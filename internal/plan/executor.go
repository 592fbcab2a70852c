package plan

import (
	"errors"
	"fmt"
	"reflect"

	"object-mapper/internal/analyze"
	"object-mapper/internal/common"
	"object-mapper/internal/config"
	"object-mapper/node"
	"object-mapper/primitive"
)

// executor runs plans for one mapping call.
type executor struct {
	engine *Engine
	mc     *MappingContext
}

// frame is the state of one complex plan run.
type frame struct {
	source reflect.Value // the level source object, pointers stripped
	target reflect.Value // pointer to the populated object
}

func (x *executor) ruleSet() config.RuleSet { return x.mc.RuleSet() }

func (x *executor) allowed() primitive.CategoryEnum { return x.engine.settings.Conversions }

func (x *executor) plan(key Key) (*Plan, error) {
	return x.engine.Plan(x.mc.Context(), key)
}

// mapValue maps source onto a value of targetType, reusing existing where the rule set
// allows. sourceType is the declared source type; nil or interface types are replaced
// by the runtime type.
func (x *executor) mapValue(source reflect.Value, sourceType, targetType reflect.Type, existing reflect.Value) (reflect.Value, error) {
	if err := x.mc.Context().Err(); err != nil {
		return reflect.Value{}, err
	}

	if runtime := runtimeType(source); runtime != nil &&
		(sourceType == nil || node.Base(sourceType).Kind() == reflect.Interface) {
		sourceType = runtime
	}

	switch analyze.ShapeOf(targetType) {
	case analyze.ShapeSimple:
		if _, err := x.plan(NewKey(x.ruleSet(), sourceType, targetType).WithRuntime(runtimeType(source), nil)); err != nil {
			return reflect.Value{}, err
		}

		v, err := primitive.Convert(source, targetType, x.allowed())
		if err != nil {
			return reflect.Value{}, mappingError(sourceType, targetType, "", err)
		}

		return v, nil

	case analyze.ShapeEnumerable:
		return x.mapEnumerable(source, sourceType, targetType, existing)

	case analyze.ShapeComplex:
		return x.mapComplex(source, sourceType, targetType, existing)

	default:
		return reflect.Value{}, mappingError(sourceType, targetType, "", ErrTargetNotConstructable)
	}
}

func (x *executor) mapComplex(source reflect.Value, sourceType, targetType reflect.Type, existing reflect.Value) (reflect.Value, error) {
	src := indirectValue(source)

	var existingPtr reflect.Value
	if x.ruleSet().ReusesTarget() {
		existingPtr = pointerOf(existing)
	}

	if !src.IsValid() {
		if existingPtr.IsValid() {
			return fit(existingPtr, targetType)
		}

		return reflect.Zero(targetType), nil
	}

	declared := node.Base(targetType)
	concrete := declared

	if declared.Kind() == reflect.Interface {
		if concrete = x.concreteType(src.Type(), declared, existingPtr); concrete == nil {
			return reflect.Value{}, mappingError(src.Type(), targetType, "", ErrTargetNotConstructable)
		}

		if existingPtr.IsValid() && existingPtr.Type().Elem() != concrete {
			existingPtr = reflect.Value{}
		}
	}

	p, err := x.plan(NewKey(x.ruleSet(), sourceType, declared).WithRuntime(src.Type(), concrete))
	if err != nil {
		return reflect.Value{}, err
	}

	target, err := x.run(p, source, src, existingPtr)
	if err != nil {
		return reflect.Value{}, err
	}

	return fit(target, targetType)
}

// mapScoped runs the member-scoped plan of key for a member of memberType, reading the
// members from the level source.
func (x *executor) mapScoped(key Key, source reflect.Value, memberType reflect.Type, existing reflect.Value) (reflect.Value, error) {
	var existingPtr reflect.Value
	if x.ruleSet().ReusesTarget() {
		existingPtr = pointerOf(existing)
	}

	declared := node.Base(memberType)
	concrete := declared

	if declared.Kind() == reflect.Interface {
		if concrete = x.concreteType(source.Type(), declared, existingPtr); concrete == nil {
			return reflect.Value{}, mappingError(source.Type(), memberType, key.MemberPath, ErrTargetNotConstructable)
		}

		if existingPtr.IsValid() && existingPtr.Type().Elem() != concrete {
			existingPtr = reflect.Value{}
		}
	}

	p, err := x.plan(key.WithRuntime(nil, concrete))
	if err != nil {
		return reflect.Value{}, err
	}

	target, err := x.run(p, reflect.Value{}, source, existingPtr)
	if err != nil {
		return reflect.Value{}, err
	}

	return fit(target, memberType)
}

// concreteType picks the type created for an interface target: a configured derived type,
// the type of the existing target, or the source type when it implements the interface.
func (x *executor) concreteType(source, declared reflect.Type, existingPtr reflect.Value) reflect.Type {
	ctx := config.MemberContext{RuleSet: x.ruleSet(), SourceType: source, TargetType: declared}
	if derived := x.engine.config.DerivedType(ctx, source, declared); derived != nil {
		return node.Base(derived)
	}

	if existingPtr.IsValid() {
		return existingPtr.Type().Elem()
	}

	if source.Implements(declared) || reflect.PointerTo(source).Implements(declared) {
		return source
	}

	return nil
}

// run executes a complex plan and returns a pointer to the target.
func (x *executor) run(p *Plan, origin, src, existingPtr reflect.Value) (reflect.Value, error) {
	reuse := p.Key.RuleSet.ReusesTarget()
	f := frame{source: src}

	for i := range p.Ops {
		op := &p.Ops[i]

		switch op.Kind {
		case OpShortCircuit:
			if reuse && existingPtr.IsValid() && sameObject(origin, existingPtr) {
				return existingPtr, nil
			}

		case OpCycleGuard:
			if target, ok := x.mc.Lookup(origin, p.Key.Target()); ok {
				return target, nil
			}

		case OpCallback:
			target := f.target
			if !target.IsValid() {
				target = existingPtr
			}

			if err := runCallbacks(op.Callbacks, src, target); err != nil {
				return reflect.Value{}, err
			}

		case OpAcquire:
			if reuse && existingPtr.IsValid() {
				f.target = existingPtr

				continue
			}

			target, err := x.construct(p, op.Construction, src)
			if err != nil {
				return reflect.Value{}, err
			}

			f.target = target

		case OpRegister:
			x.mc.Register(origin, p.Key.Target(), f.target)

		case OpReturn:
			return f.target, nil

		default:
			if err := x.populate(p, op, f); err != nil {
				return reflect.Value{}, err
			}
		}
	}

	return f.target, nil
}

// construct creates a new target: the first applying factory, the chosen constructor or
// a zero value, in that order.
func (x *executor) construct(p *Plan, c *Construction, src reflect.Value) (reflect.Value, error) {
	for _, factory := range c.Factories {
		ok, err := config.Holds(factory.Condition, src)
		if err != nil {
			return reflect.Value{}, err
		}

		if !ok {
			continue
		}

		out, ok, err := factory.Create.Call(src)
		if err != nil {
			return reflect.Value{}, err
		}

		if ok && !isNil(out) {
			return pointerTo(out, c.Type)
		}
	}

	if c.Constructor != nil {
		args := make([]reflect.Value, len(c.Params))
		for i, set := range c.Params {
			arg, err := x.argument(set, src, c.Constructor.Func.In[i])
			if err != nil {
				return reflect.Value{}, err
			}

			args[i] = arg
		}

		out, ok, err := c.Constructor.Func.Call(args...)
		if err != nil {
			return reflect.Value{}, err
		}

		if ok && !isNil(out) {
			return pointerTo(out, c.Type)
		}
	}

	if c.Zero {
		return reflect.New(c.Type), nil
	}

	return reflect.Value{}, mappingError(src.Type(), c.Type, p.Target.Path(), ErrTargetNotConstructable)
}

func (x *executor) argument(set *DataSourceSet, src reflect.Value, param reflect.Type) (reflect.Value, error) {
	v, ok, err := x.value(set, frame{source: src})
	if err != nil || !ok {
		return reflect.Zero(param), err
	}

	if analyze.ShapeOf(param) == analyze.ShapeSimple {
		converted, err := primitive.Convert(v, param, x.allowed())
		if err != nil {
			return reflect.Value{}, mappingError(v.Type(), param, set.Target.Path(), err)
		}

		return converted, nil
	}

	return x.mapValue(v, set.Type(), param, reflect.Value{})
}

// populate executes one member operation.
func (x *executor) populate(p *Plan, op *Operation, f frame) error {
	if op.Kind == OpSkipMember {
		return nil
	}

	for _, ignore := range op.Sources.Ignores {
		ignored, err := config.Holds(ignore.Condition, f.source, f.target)
		if err != nil {
			return err
		}

		if ignored {
			return nil
		}
	}

	m := op.Target.Member()

	switch op.Kind {
	case OpPopulateMember:
		v, ok, err := x.value(op.Sources, f)
		if err != nil {
			return err
		}

		if !ok {
			return x.clear(m, f)
		}

		converted, err := primitive.Convert(v, m.Type, x.allowed())
		if err != nil {
			return mappingError(p.Key.Source(), p.Key.Target(), op.Target.Path(), err)
		}

		return m.Set(f.target, converted)

	case OpReconcileEnumerable:
		v, ok, err := x.value(op.Sources, f)
		if err != nil || !ok {
			return err
		}

		result, err := x.mapValue(v, op.Sources.Type(), m.Type, x.existing(m, f))
		if err != nil {
			return err
		}

		return m.Set(f.target, result)

	case OpPopulateComplex:
		var (
			v       reflect.Value
			present = true
			err     error
		)

		if op.Sources.HasValue() {
			if v, present, err = x.value(op.Sources, f); err != nil {
				return err
			}
		}

		if !present {
			return x.clear(m, f)
		}

		var result reflect.Value
		if op.Child.IsMemberScoped() {
			result, err = x.mapScoped(op.Child, f.source, m.Type, x.existing(m, f))
		} else {
			result, err = x.mapValue(v, op.Sources.Type(), m.Type, x.existing(m, f))
		}

		if errors.Is(err, ErrTargetNotConstructable) {
			x.engine.settings.Logger.Debug("member not constructable, skipped",
				"plan", p.Key.String(), "member", op.Target.Path())

			return nil
		}

		if err != nil {
			return err
		}

		return m.Set(f.target, result)
	}

	return fmt.Errorf("unexpected %s operation for %s", op.Kind, op.Target)
}

// clear handles a member whose data sources supplied no value: Overwrite resets it,
// the other rule sets leave it alone.
func (x *executor) clear(m *analyze.Member, f frame) error {
	if x.ruleSet() != config.Overwrite {
		return nil
	}

	return m.Set(f.target, reflect.Value{})
}

// existing returns the current member value when the rule set reuses targets.
func (x *executor) existing(m *analyze.Member, f frame) reflect.Value {
	if !x.ruleSet().ReusesTarget() || !m.Readable {
		return reflect.Value{}
	}

	v, _ := m.Get(f.target)

	return v
}

// value evaluates the data sources in order. The first configured data source whose
// condition holds, or the first unconditional one, supplies the value. The boolean is
// false when the value is missing or nil.
func (x *executor) value(set *DataSourceSet, f frame) (reflect.Value, bool, error) {
	for _, ds := range set.Sources {
		if ds.Conditional() {
			ok, err := config.Holds(ds.Configured.Condition, f.source, f.target)
			if err != nil {
				return reflect.Value{}, false, err
			}

			if !ok {
				continue
			}
		}

		v, ok, err := read(ds, f)
		if err != nil {
			return reflect.Value{}, false, err
		}

		if !ok && ds.Configured != nil && ds.Configured.Default.IsValid() {
			return ds.Configured.Default, true, nil
		}

		return v, ok, nil
	}

	return reflect.Value{}, false, nil
}

func read(ds DataSource, f frame) (reflect.Value, bool, error) {
	switch {
	case ds.Member != nil:
		v, ok := ds.Member.Read(f.source)

		return v, ok && !isNil(v), nil

	case ds.Configured != nil && ds.Configured.Value != nil:
		v, ok, err := ds.Configured.Value.Call(f.source, f.target)

		return v, ok && !isNil(v), err

	case ds.Configured != nil:
		return ds.Configured.Constant, !isNil(ds.Configured.Constant), nil
	}

	return reflect.Value{}, false, nil
}

func runCallbacks(callbacks []*config.Callback, source, target reflect.Value) error {
	for _, cb := range callbacks {
		if _, _, err := cb.Action.Call(source, target); err != nil {
			return err
		}
	}

	return nil
}

// isNil reports whether v holds no value.
func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// indirectValue strips pointers and interfaces. It returns the zero Value for nil.
func indirectValue(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

func runtimeType(v reflect.Value) reflect.Type {
	if v = indirectValue(v); !v.IsValid() {
		return nil
	}

	return v.Type()
}

// pointerOf returns a pointer to the struct held by v, or the zero Value when v is nil.
// Addressable values are pointed to in place; others are copied.
func pointerOf(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		return reflect.Value{}
	}

	if v.Kind() != reflect.Pointer {
		if v.CanAddr() {
			return v.Addr()
		}

		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)

		return ptr
	}

	for v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	if v.IsNil() {
		return reflect.Value{}
	}

	return v
}

// pointerTo turns a created value into a pointer to typ.
func pointerTo(v reflect.Value, typ reflect.Type) (reflect.Value, error) {
	ptr := pointerOf(v)
	if !ptr.IsValid() || ptr.Type().Elem() != typ {
		got := "nil"
		if v.IsValid() {
			got = common.TypeName(v.Type())
		}

		return reflect.Value{}, fmt.Errorf("%w: created %s, want %s", ErrTargetNotConstructable, got, common.TypeName(typ))
	}

	return ptr, nil
}

// fit adapts v, usually a pointer to a struct, to t by adding or removing pointer layers.
func fit(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}

	if v.Type().AssignableTo(t) {
		return v, nil
	}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(t), nil
		}

		if v.Elem().Type().AssignableTo(t) {
			return v.Elem(), nil
		}
	}

	if t.Kind() == reflect.Pointer {
		inner, err := fit(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)

		return ptr, nil
	}

	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrConversionUnsupported, common.TypeName(v.Type()), common.TypeName(t))
}

// sameObject reports whether source and target are the same instance.
func sameObject(source, target reflect.Value) bool {
	for source.IsValid() && source.Kind() == reflect.Interface && !source.IsNil() {
		source = source.Elem()
	}

	if !source.IsValid() || !target.IsValid() || (source.Kind() != reflect.Pointer && !source.CanAddr()) {
		return false
	}

	ptr := pointerOf(source)
	if !ptr.IsValid() {
		return false
	}

	return ptr.Type() == target.Type() && ptr.Pointer() == target.Pointer()
}
