package plan

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"object-mapper/internal/analyze"
	"object-mapper/internal/common"
	"object-mapper/node"
	"object-mapper/primitive"
)

func (x *executor) mapEnumerable(source reflect.Value, sourceType, targetType reflect.Type, existing reflect.Value) (reflect.Value, error) {
	src := indirectValue(source)
	if isNil(src) {
		if x.ruleSet().ReusesTarget() && existing.IsValid() {
			return existing, nil
		}

		return reflect.Zero(targetType), nil
	}

	p, err := x.plan(NewKey(x.ruleSet(), sourceType, targetType).WithRuntime(src.Type(), nil))
	if err != nil {
		return reflect.Value{}, err
	}

	var current reflect.Value
	if x.ruleSet().ReusesTarget() {
		if current = indirectValue(existing); isNil(current) {
			current = reflect.Value{}
		}
	}

	elems := elementsOf(src)

	var out reflect.Value

	switch p.Enumerable.TargetKind {
	case node.DispatcherSet:
		out, err = x.reconcileSet(p, elems, current)
	case node.DispatcherArray:
		out, err = x.reconcileArray(p, elems, current)
	default:
		out, err = x.reconcileSlice(p, elems, current)
	}

	if err != nil {
		return reflect.Value{}, err
	}

	return fit(out, targetType)
}

// mapElement maps one source element, onto existing when given. A nil element maps to a
// zero element. The boolean is false when the element cannot be constructed and is left out.
func (x *executor) mapElement(p *Plan, elem, existing reflect.Value) (reflect.Value, bool, error) {
	ep := p.Enumerable

	if isNil(elem) {
		return reflect.Zero(ep.TargetElem), true, nil
	}

	if ep.ElementShape == analyze.ShapeSimple {
		v, err := primitive.Convert(elem, ep.TargetElem, x.allowed())
		if err != nil {
			return reflect.Value{}, false, mappingError(p.Key.Source(), p.Key.Target(), ep.Element.Path(), err)
		}

		return v, true, nil
	}

	v, err := x.mapValue(elem, ep.SourceElem, ep.TargetElem, existing)
	if errors.Is(err, ErrTargetNotConstructable) {
		x.engine.settings.Logger.Debug("element not constructable, left out", "plan", p.Key.String())

		return reflect.Value{}, false, nil
	}

	return v, err == nil, err
}

func (x *executor) appendMapped(p *Plan, out reflect.Value, elems []reflect.Value) (reflect.Value, error) {
	for _, elem := range elems {
		mapped, ok, err := x.mapElement(p, elem, reflect.Value{})
		if err != nil {
			return reflect.Value{}, err
		}

		if ok {
			out = reflect.Append(out, mapped)
		}
	}

	return out, nil
}

func (x *executor) reconcileSlice(p *Plan, elems []reflect.Value, current reflect.Value) (reflect.Value, error) {
	ep := p.Enumerable
	typ := p.Key.Target()

	switch ep.Strategy {
	case StrategyMergeAppend:
		if !current.IsValid() {
			current = reflect.MakeSlice(typ, 0, len(elems))
		}

		return x.appendMapped(p, current, elems)

	case StrategyMergeByIdentity:
		out := current
		if !out.IsValid() {
			out = reflect.MakeSlice(typ, 0, len(elems))
		}

		index := identityIndex(ep, out)

		for _, elem := range elems {
			var existing reflect.Value

			i, matched := x.matchIdentity(ep, index, elem)
			if matched {
				existing = out.Index(i)
			}

			mapped, ok, err := x.mapElement(p, elem, existing)
			if err != nil {
				return reflect.Value{}, err
			}

			switch {
			case !ok:
			case matched:
				out.Index(i).Set(mapped)
			default:
				out = reflect.Append(out, mapped)
			}
		}

		return out, nil

	case StrategyOverwriteInPlace:
		mapped, err := x.appendMapped(p, reflect.MakeSlice(typ, 0, len(elems)), elems)
		if err != nil {
			return reflect.Value{}, err
		}

		return reuseBacking(current, mapped), nil

	case StrategyOverwriteByIdentity:
		index := identityIndex(ep, current)
		mapped := reflect.MakeSlice(typ, 0, len(elems))

		for _, elem := range elems {
			var existing reflect.Value
			if i, ok := x.matchIdentity(ep, index, elem); ok {
				existing = current.Index(i)
			}

			v, ok, err := x.mapElement(p, elem, existing)
			if err != nil {
				return reflect.Value{}, err
			}

			if ok {
				mapped = reflect.Append(mapped, v)
			}
		}

		return reuseBacking(current, mapped), nil

	default:
		return x.appendMapped(p, reflect.MakeSlice(typ, 0, len(elems)), elems)
	}
}

// reuseBacking copies mapped into the backing array of current when it fits, so the
// existing collection is updated in place. Slots past the new length are cleared.
func reuseBacking(current, mapped reflect.Value) reflect.Value {
	if !current.IsValid() || current.Cap() < mapped.Len() {
		return mapped
	}

	out := current.Slice(0, mapped.Len())
	reflect.Copy(out, mapped)

	if current.Len() > mapped.Len() {
		current.Slice(mapped.Len(), current.Len()).Clear()
	}

	return out
}

func (x *executor) reconcileArray(p *Plan, elems []reflect.Value, current reflect.Value) (reflect.Value, error) {
	ep := p.Enumerable
	typ := p.Key.Target()

	overflow := func() error {
		if x.allowed().Has(primitive.CategoryUnsafeArray) {
			return nil
		}

		return mappingError(p.Key.Source(), typ, "", fmt.Errorf("%w: %d elements do not fit into %s",
			primitive.ErrConversionFailed, len(elems), common.TypeName(typ)))
	}

	out := reflect.New(typ).Elem()

	switch ep.Strategy {
	case StrategyMergeAppend, StrategyMergeByIdentity:
		if current.IsValid() {
			out.Set(current)
		}

		index := identityIndex(ep, out)

		var free []int
		for i := range out.Len() {
			if out.Index(i).IsZero() {
				free = append(free, i)
			}
		}

		for _, elem := range elems {
			if i, ok := x.matchIdentity(ep, index, elem); ok {
				mapped, ok, err := x.mapElement(p, elem, out.Index(i))
				if err != nil {
					return reflect.Value{}, err
				}

				if ok {
					out.Index(i).Set(mapped)
				}

				continue
			}

			if len(free) == 0 {
				if err := overflow(); err != nil {
					return reflect.Value{}, err
				}

				continue
			}

			mapped, ok, err := x.mapElement(p, elem, reflect.Value{})
			if err != nil {
				return reflect.Value{}, err
			}

			if ok {
				out.Index(free[0]).Set(mapped)
				free = free[1:]
			}
		}

		return out, nil

	default:
		if len(elems) > typ.Len() {
			if err := overflow(); err != nil {
				return reflect.Value{}, err
			}

			elems = elems[:typ.Len()]
		}

		var index map[any]int
		if ep.Strategy == StrategyOverwriteByIdentity && current.IsValid() {
			index = identityIndex(ep, current)
		}

		for i, elem := range elems {
			var existing reflect.Value
			if j, ok := x.matchIdentity(ep, index, elem); ok {
				existing = current.Index(j)
			}

			mapped, ok, err := x.mapElement(p, elem, existing)
			if err != nil {
				return reflect.Value{}, err
			}

			if ok {
				out.Index(i).Set(mapped)
			}
		}

		return out, nil
	}
}

func (x *executor) reconcileSet(p *Plan, elems []reflect.Value, current reflect.Value) (reflect.Value, error) {
	ep := p.Enumerable
	typ := p.Key.Target()

	out := current

	switch ep.Strategy {
	case StrategyCreateNew:
		out = reflect.MakeMapWithSize(typ, len(elems))
	case StrategyMergeAppend, StrategyMergeByIdentity:
		if !out.IsValid() {
			out = reflect.MakeMapWithSize(typ, len(elems))
		}
	default:
		if out.IsValid() {
			out.Clear()
		} else {
			out = reflect.MakeMapWithSize(typ, len(elems))
		}
	}

	present := reflect.Zero(typ.Elem())
	if typ.Elem().Kind() == reflect.Bool {
		present = reflect.ValueOf(true).Convert(typ.Elem())
	}

	for _, elem := range elems {
		if isNil(elem) {
			continue
		}

		key, err := primitive.Convert(elem, ep.TargetElem, x.allowed())
		if err != nil {
			return reflect.Value{}, mappingError(p.Key.Source(), typ, ep.Element.Path(), err)
		}

		out.SetMapIndex(key, present)
	}

	return out, nil
}

// identityIndex maps the identifier of every target element to its position. Elements
// without identifier value are not indexed; the first of duplicate identifiers wins.
func identityIndex(ep *EnumerablePlan, coll reflect.Value) map[any]int {
	if !ep.Identifiable() || !coll.IsValid() {
		return nil
	}

	index := make(map[any]int, coll.Len())

	for i := range coll.Len() {
		id, ok := ep.TargetID.Get(coll.Index(i))
		if !ok {
			continue
		}

		if key, ok := identityOf(id); ok {
			if _, dup := index[key]; !dup {
				index[key] = i
			}
		}
	}

	return index
}

// matchIdentity finds the target position of the element with the same identifier.
// Source elements with a zero identifier are new and never match.
func (x *executor) matchIdentity(ep *EnumerablePlan, index map[any]int, elem reflect.Value) (int, bool) {
	if len(index) == 0 || isNil(elem) {
		return 0, false
	}

	id, ok := ep.SourceID.Get(elem)
	if !ok {
		return 0, false
	}

	converted, err := primitive.Convert(id, node.Base(ep.TargetID.Type), x.allowed())
	if err != nil {
		return 0, false
	}

	key, ok := identityOf(converted)
	if !ok {
		return 0, false
	}

	i, ok := index[key]

	return i, ok
}

func identityOf(id reflect.Value) (any, bool) {
	id = indirectValue(id)
	if !id.IsValid() || id.IsZero() || !id.Type().Comparable() {
		return nil, false
	}

	return id.Interface(), true
}

// elementsOf lists the elements of a slice, array or set. Set elements are sorted so
// that mapping them is deterministic.
func elementsOf(coll reflect.Value) []reflect.Value {
	switch coll.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]reflect.Value, coll.Len())
		for i := range elems {
			elems[i] = coll.Index(i)
		}

		return elems

	case reflect.Map:
		var keys []reflect.Value

		iter := coll.MapRange()
		for iter.Next() {
			if v := iter.Value(); v.Kind() == reflect.Bool && !v.Bool() {
				continue
			}

			keys = append(keys, iter.Key())
		}

		slices.SortFunc(keys, compareValues)

		return keys
	}

	return nil
}

func compareValues(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	default:
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	}
}
