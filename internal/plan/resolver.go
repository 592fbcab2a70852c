package plan

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"object-mapper/internal/analyze"
	"object-mapper/internal/common"
	"object-mapper/internal/config"
	"object-mapper/node"
	"object-mapper/options"
	"object-mapper/primitive"
)

// Resolver decides where target member values come from and how targets are created.
// Constructions are cached per rule set and qualified member pair until Reset.
type Resolver struct {
	finder   *analyze.Finder
	config   *config.Set
	settings options.Settings

	constructions sync.Map // constructionKey -> *Construction
}

type constructionKey struct {
	ruleSet config.RuleSet
	source  *analyze.QualifiedMember
	target  *analyze.QualifiedMember
}

// NewResolver creates a resolver over the given members and configuration.
func NewResolver(finder *analyze.Finder, cfg *config.Set, settings options.Settings) *Resolver {
	return &Resolver{finder: finder, config: cfg, settings: settings}
}

// Reset forgets cached constructions.
func (r *Resolver) Reset() {
	r.constructions.Clear()
}

// level is the scope member paths are resolved in: one source object and the target
// root object whose members, at any depth, are populated from it.
type level struct {
	ruleSet config.RuleSet
	source  *analyze.QualifiedMember
	root    reflect.Type
}

func (l level) context(target *analyze.QualifiedMember) config.MemberContext {
	return config.MemberContext{
		RuleSet:    l.ruleSet,
		SourceType: l.source.Type(),
		TargetType: l.root,
		Path:       target.Path(),
	}
}

// resolveDataSources returns the data sources of target: configured ones in priority
// order, then the matched source member unless an unconditional configured data source
// makes it unreachable.
func (r *Resolver) resolveDataSources(lvl level, target *analyze.QualifiedMember) (*DataSourceSet, []*analyze.QualifiedMember, error) {
	set := &DataSourceSet{Target: target}

	for _, item := range r.config.DataSources(lvl.context(target)) {
		ds, err := r.configuredSource(lvl, target, item)
		if err != nil {
			return nil, nil, err
		}

		set.Sources = append(set.Sources, ds)
		if item.Unconditional() {
			return set, nil, nil
		}
	}

	best, rejected := r.matchSource(lvl.source, target)
	if best != nil {
		set.Sources = append(set.Sources, DataSource{Kind: SourceMember, Member: best, Type: best.Type()})
	}

	return set, rejected, nil
}

func (r *Resolver) configuredSource(lvl level, target *analyze.QualifiedMember, item *config.DataSource) (DataSource, error) {
	ds := DataSource{Kind: SourceConfigured, Configured: item, Type: item.Type()}

	if item.SourcePath != "" {
		ds.Member = lvl.source.AppendPath(strings.Split(item.SourcePath, ".")...)
		if ds.Member == nil {
			return DataSource{}, fmt.Errorf("%w: %s has no member %s",
				config.ErrInvalidConfiguration, common.TypeName(lvl.source.Type()), item.SourcePath)
		}

		ds.Type = ds.Member.Type()
	}

	if ds.Type != nil && !r.convertible(ds.Type, target.Type()) {
		return DataSource{}, &MappingError{
			SourceType: ds.Type,
			TargetType: target.Type(),
			Path:       target.Path(),
			Err:        fmt.Errorf("%w: configured %s", ErrConversionUnsupported, item),
		}
	}

	if item.Default.IsValid() && analyze.ShapeOf(target.Type()) == analyze.ShapeSimple &&
		!primitive.CanConvert(item.Default.Type(), target.Type(), r.settings.Conversions) {
		return DataSource{}, &MappingError{
			SourceType: item.Default.Type(),
			TargetType: target.Type(),
			Path:       target.Path(),
			Err:        fmt.Errorf("%w: default value", ErrConversionUnsupported),
		}
	}

	return ds, nil
}

// Construction tells how a new target instance is created: the first factory whose
// condition holds, else the chosen constructor, else a zero value.
type Construction struct {
	// Type is the created type, pointers stripped.
	Type reflect.Type
	// Factories are tried in order; the last one may be unconditional.
	Factories []*config.Factory
	// Constructor is the greediest registered constructor whose parameters all resolve.
	Constructor *config.Constructor
	// Params hold the data sources of the constructor parameters.
	Params []*DataSourceSet
	// Zero creates a zero value when nothing else applies. Only structs without
	// registered constructors have one.
	Zero bool
}

// Constructable reports whether some way of creating the target exists.
func (c *Construction) Constructable() bool {
	return c != nil && (len(c.Factories) > 0 || c.Constructor != nil || c.Zero)
}

// String describes the construction for plan descriptions.
func (c *Construction) String() string {
	if !c.Constructable() {
		return "not constructable"
	}

	var parts []string
	for _, f := range c.Factories {
		part := f.Create.String() + "(source)"
		if f.Condition != nil {
			part += " if " + f.Condition.String()
		}

		parts = append(parts, part)
	}

	switch {
	case c.Constructor != nil:
		args := make([]string, len(c.Params))
		for i, p := range c.Params {
			args[i] = p.Sources[0].String()
		}

		parts = append(parts, c.Constructor.Func.String()+"("+strings.Join(args, ", ")+")")
	case c.Zero:
		parts = append(parts, common.TypeName(c.Type)+"{}")
	}

	return strings.Join(parts, " else ")
}

// resolveConstruction decides how target instances are created when mapping from the
// level source.
func (r *Resolver) resolveConstruction(lvl level, target *analyze.QualifiedMember) (*Construction, error) {
	key := constructionKey{ruleSet: lvl.ruleSet, source: lvl.source, target: target}
	if cached, ok := r.constructions.Load(key); ok {
		return cached.(*Construction), nil
	}

	typ := node.Base(target.Type())
	c := &Construction{Type: typ}

	c.Factories = r.config.Factories(config.MemberContext{
		RuleSet:    lvl.ruleSet,
		SourceType: lvl.source.Type(),
		TargetType: typ,
	})

	if last, ok := common.Last(c.Factories); !ok || !last.Unconditional() {
		constructors := r.config.Constructors(typ)

		// greediest first, registration order among equals
		slices.SortStableFunc(constructors, func(a, b *config.Constructor) int {
			return cmp.Compare(b.Arity(), a.Arity())
		})

		for _, ctor := range constructors {
			params, ok, err := r.resolveParams(lvl, target, typ, ctor)
			if err != nil {
				return nil, err
			}

			if ok {
				c.Constructor, c.Params = ctor, params

				break
			}
		}

		c.Zero = len(constructors) == 0 && typ.Kind() == reflect.Struct
	}

	cached, _ := r.constructions.LoadOrStore(key, c)

	return cached.(*Construction), nil
}

func (r *Resolver) resolveParams(
	lvl level, target *analyze.QualifiedMember, typ reflect.Type, ctor *config.Constructor,
) ([]*DataSourceSet, bool, error) {
	params := make([]*DataSourceSet, len(ctor.Params))

	for i, name := range ctor.Params {
		param := target.Append(r.finder.Parameter(typ, name, i, ctor.Func.In[i]))

		set, _, err := r.resolveDataSources(lvl, param)
		if err != nil {
			return nil, false, err
		}

		if !set.HasValue() {
			return nil, false, nil
		}

		params[i] = set
	}

	return params, true, nil
}
