package plan

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"object-mapper/internal/analyze"
	"object-mapper/internal/common"
	"object-mapper/internal/config"
	"object-mapper/internal/diagnostic"
	"object-mapper/node"
	"object-mapper/primitive"
)

// Compile builds the plan of key. Nested plans are not compiled; operations refer to
// them by key.
func (r *Resolver) Compile(ctx context.Context, key Key) (p *Plan, err error) {
	_, span := r.settings.Tracer.Start(ctx, "plan.compile", trace.WithAttributes(
		attribute.String("mapper.rule_set", key.RuleSet.String()),
		attribute.String("mapper.source", common.TypeName(key.Source())),
		attribute.String("mapper.target", common.TypeName(key.Target())),
		attribute.String("mapper.member_path", key.MemberPath),
	))

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	if key.Source() == nil || key.Target() == nil {
		return nil, fmt.Errorf("%w: plan %s needs source and target types", ErrConversionUnsupported, key)
	}

	switch analyze.ShapeOf(key.Target()) {
	case analyze.ShapeSimple:
		p, err = r.compileSimple(key)
	case analyze.ShapeEnumerable:
		p, err = r.compileEnumerable(key)
	case analyze.ShapeComplex:
		p, err = r.compileComplex(key)
	default:
		err = &MappingError{SourceType: key.Source(), TargetType: key.Target(), Err: ErrTargetNotConstructable}
	}

	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("mapper.operations", len(p.Ops)))
	r.settings.Logger.Debug("compiled plan",
		"key", key.String(),
		"shape", p.Shape.String(),
		"operations", len(p.Ops),
		"diagnostics", p.Diagnostics.Len(),
	)

	return p, nil
}

func (r *Resolver) compileSimple(key Key) (*Plan, error) {
	if !r.convertible(key.Source(), key.Target()) {
		return nil, &MappingError{SourceType: key.Source(), TargetType: key.Target(), Err: ErrConversionUnsupported}
	}

	return &Plan{
		Key:    key,
		Shape:  analyze.ShapeSimple,
		Source: r.finder.Root(key.Source()),
		Target: r.finder.Root(key.Target()),
	}, nil
}

func (r *Resolver) compileEnumerable(key Key) (*Plan, error) {
	src, tgt := key.Source(), key.Target()
	if !r.convertible(src, tgt) {
		return nil, &MappingError{SourceType: src, TargetType: tgt, Err: ErrConversionUnsupported}
	}

	srcElem, tgtElem := r.finder.Element(src), r.finder.Element(tgt)
	if srcElem == nil || tgtElem == nil {
		return nil, &MappingError{SourceType: src, TargetType: tgt, Err: ErrConversionUnsupported}
	}

	ep := &EnumerablePlan{
		SourceElem:   srcElem.Type,
		TargetElem:   tgtElem.Type,
		TargetKind:   node.Classify(tgt),
		Element:      r.finder.Root(tgt).Append(tgtElem),
		ElementShape: tgtElem.Shape,
	}

	if ep.ElementShape != analyze.ShapeSimple {
		elem := NewKey(key.RuleSet, ep.SourceElem, ep.TargetElem)
		ep.ElementKey = &elem
	}

	ep.SourceID, ep.TargetID = elementIdentifiers(r.finder, ep.SourceElem, ep.TargetElem)
	ep.Strategy, _ = selectStrategy(key.RuleSet, ep.TargetKind, ep.Identifiable())

	if ep.TargetKind == node.DispatcherArray && !r.settings.Conversions.Has(primitive.CategorySafeArray) &&
		node.Classify(src) != node.DispatcherArray {
		return nil, &MappingError{SourceType: src, TargetType: tgt, Err: ErrConversionUnsupported}
	}

	return &Plan{
		Key:        key,
		Shape:      analyze.ShapeEnumerable,
		Source:     r.finder.Root(src),
		Target:     r.finder.Root(tgt),
		Enumerable: ep,
	}, nil
}

func (r *Resolver) compileComplex(key Key) (*Plan, error) {
	lvl := level{ruleSet: key.RuleSet, source: r.finder.Root(key.Source()), root: key.Target()}
	target := r.finder.Root(key.Target())

	if key.IsMemberScoped() {
		lvl.root = key.RootTarget

		target = r.finder.Root(key.RootTarget).AppendPath(strings.Split(key.MemberPath, ".")...)
		if target == nil {
			return nil, fmt.Errorf("%w: %s has no member %s",
				config.ErrInvalidConfiguration, common.TypeName(key.RootTarget), key.MemberPath)
		}

		target = target.WithType(key.Target())
	}

	p := &Plan{Key: key, Shape: analyze.ShapeComplex, Source: lvl.source, Target: target}
	typePair := common.TypeName(key.Source()) + "->" + common.TypeName(key.Target())

	if !key.IsMemberScoped() {
		p.Ops = append(p.Ops, Operation{Kind: OpShortCircuit}, Operation{Kind: OpCycleGuard})
	}

	objectCtx := config.MemberContext{RuleSet: key.RuleSet, SourceType: key.Source(), TargetType: key.Target()}

	p.Ops = appendCallbacks(p.Ops, nil, r.config.Callbacks(config.Before, config.ObjectCreation, objectCtx))

	construction, err := r.resolveConstruction(lvl, target)
	if err != nil {
		return nil, err
	}

	if !construction.Constructable() {
		p.Diagnostics.AddWarning(diagnostic.CodeNotConstructable,
			common.TypeName(key.Target())+" has no usable constructor, factory or zero value", typePair, target.Path())
	}

	p.Ops = append(p.Ops, Operation{Kind: OpAcquire, Target: target, Construction: construction})
	p.Ops = appendCallbacks(p.Ops, nil, r.config.Callbacks(config.After, config.ObjectCreation, objectCtx))

	if !key.IsMemberScoped() {
		p.Ops = append(p.Ops, Operation{Kind: OpRegister})
	}

	for _, m := range r.finder.Writable(key.Target()) {
		ops, err := r.compileMember(lvl, target.Append(m), &p.Diagnostics, typePair)
		if err != nil {
			return nil, err
		}

		p.Ops = append(p.Ops, ops...)
	}

	p.Ops = append(p.Ops, Operation{Kind: OpReturn})

	return p, nil
}

// compileMember returns the operations populating one target member, surrounded by its
// callbacks.
func (r *Resolver) compileMember(
	lvl level, target *analyze.QualifiedMember, diags *diagnostic.Diagnostics, typePair string,
) ([]Operation, error) {
	ctx := lvl.context(target)
	m := target.Member()

	ignores := r.config.IgnoredMember(ctx)
	if len(ignores) == 1 && ignores[0].Condition == nil {
		diags.AddInfo(diagnostic.CodeIgnored, target.Path()+" is ignored", typePair, target.Path())

		return []Operation{{Kind: OpSkipMember, Target: target, Reason: "ignored"}}, nil
	}

	set, rejected, err := r.resolveDataSources(lvl, target)
	if err != nil {
		return nil, err
	}

	set.Ignores = ignores
	r.reportRejected(diags, typePair, target, rejected)

	op := Operation{Target: target, Sources: set}

	switch {
	case m.IsComplex() && r.memberScoped(lvl, target, set):
		op.Kind = OpPopulateComplex
		op.Child = Key{
			RuleSet:    lvl.ruleSet,
			SourceType: node.Base(lvl.source.Type()),
			TargetType: node.Base(m.Type),
			RootTarget: lvl.root,
			MemberPath: target.Path(),
		}

	case !set.HasValue():
		r.reportUnmapped(diags, typePair, lvl.source, target)

		return []Operation{{Kind: OpSkipMember, Target: target, Reason: "no data source"}}, nil

	case m.IsSimple():
		op.Kind = OpPopulateMember

	case m.IsEnumerable():
		op.Kind = OpReconcileEnumerable
		op.Child = NewKey(lvl.ruleSet, set.Type(), m.Type)

	default:
		op.Kind = OpPopulateComplex
		op.Child = NewKey(lvl.ruleSet, set.Type(), m.Type)
	}

	var ops []Operation
	ops = appendCallbacks(ops, target, r.config.Callbacks(config.Before, config.MemberPopulation, ctx))
	ops = append(ops, op)
	ops = appendCallbacks(ops, target, r.config.Callbacks(config.After, config.MemberPopulation, ctx))

	return ops, nil
}

// memberScoped reports whether a complex member is populated by a plan of its own reading
// the level source: when configuration addresses members below it, or when flattened
// source members continue its name and nothing maps onto it directly.
func (r *Resolver) memberScoped(lvl level, target *analyze.QualifiedMember, set *DataSourceSet) bool {
	for _, ds := range set.Sources {
		if ds.Kind == SourceConfigured {
			return false
		}
	}

	if r.config.HasDeeperConfiguration(lvl.context(target)) {
		return true
	}

	return !set.HasValue() && r.hasNestedCandidates(lvl.source, target)
}

func appendCallbacks(ops []Operation, target *analyze.QualifiedMember, callbacks []*config.Callback) []Operation {
	if len(callbacks) == 0 {
		return ops
	}

	return append(ops, Operation{Kind: OpCallback, Target: target, Callbacks: callbacks})
}
