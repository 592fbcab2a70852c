package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"object-mapper/internal/config"
	"object-mapper/internal/diagnostic"
)

// Apply validates f and registers its mappings in cfg. Nothing is registered when
// validation reports errors; the diagnostics are returned in that case. Registration
// errors such as configuration conflicts stop at the first one.
func Apply(f *File, env Env, cfg *config.Set) (*diagnostic.Diagnostics, error) {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError(diagnostic.CodeConfigurationFailed, "mapping file is nil", "", "")
		return res, res.Error()
	}

	all := make([]*resolved, 0, len(f.Mappings))
	for i := range f.Mappings {
		all = append(all, validateMapping(res, env, &f.Mappings[i]))
	}

	if err := res.Error(); err != nil {
		return res, fmt.Errorf("%w: %w", config.ErrInvalidConfiguration, err)
	}

	for _, r := range all {
		if err := register(r, env, cfg); err != nil {
			return res, fmt.Errorf("mapping %s: %w", r.mapping.TypePair(), err)
		}
	}

	return res, nil
}

func register(r *resolved, env Env, cfg *config.Set) error {
	scope := config.Scope{SourceType: r.source, TargetType: r.target, RuleSets: r.ruleSets}

	for _, path := range r.mapping.Ignore {
		if err := cfg.AddIgnore(config.Ignore{Scope: scope, Path: path}); err != nil {
			return err
		}
	}

	for _, fm := range r.mapping.Fields {
		ds := config.DataSource{Scope: scope, Path: fm.Target, SourcePath: fm.Source}

		if fm.Transform != "" {
			ds.Value = env.Transforms.Get(fm.Transform)
		}

		if fm.Default != nil {
			target := env.Finder.Root(r.target).AppendPath(strings.Split(fm.Target, ".")...)

			v, err := defaultValue(*fm.Default, target.Type(), env.Conversions)
			if err != nil {
				return err
			}

			ds.Default = v
			if ds.SourcePath == "" && ds.Value == nil {
				ds.Constant = v
			}
		}

		if err := cfg.AddDataSource(ds); err != nil {
			return err
		}
	}

	for _, d := range r.mapping.Derive {
		declared, derived := env.Types.Resolve(d.Declared), env.Types.Resolve(d.Derived)
		if !derived.AssignableTo(declared) {
			derived = reflect.PointerTo(derived)
		}

		err := cfg.AddDerivedPair(config.DerivedPair{
			Scope:        config.Scope{RuleSets: r.ruleSets},
			SourceType:   r.source,
			DeclaredType: declared,
			DerivedType:  derived,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
