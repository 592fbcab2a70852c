package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"object-mapper/internal/analyze"
	"object-mapper/internal/config"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/match"
	"object-mapper/primitive"
)

// Env is what a mapping file is checked and applied against.
type Env struct {
	Types       *TypeRegistry
	Transforms  *TransformRegistry
	Finder      *analyze.Finder
	Conversions primitive.CategoryEnum
}

// resolved is a type mapping whose names were resolved.
type resolved struct {
	mapping  *TypeMapping
	source   reflect.Type
	target   reflect.Type
	ruleSets []config.RuleSet
}

// Validate checks a mapping file against the registered types and transforms.
// This is a structural validation step only; convertibility of matched members is
// checked when plans are compiled.
func Validate(f *File, env Env) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError(diagnostic.CodeConfigurationFailed, "mapping file is nil", "", "")
		return res
	}

	for i := range f.Mappings {
		validateMapping(res, env, &f.Mappings[i])
	}

	return res
}

func validateMapping(res *diagnostic.Diagnostics, env Env, tm *TypeMapping) *resolved {
	tp := tm.TypePair()
	r := &resolved{mapping: tm}

	for _, name := range tm.RuleSets {
		rs, err := config.ParseRuleSet(name)
		if err != nil {
			res.AddError(diagnostic.CodeInvalidRuleSet, err.Error(), tp, "")
			continue
		}

		r.ruleSets = append(r.ruleSets, rs)
	}

	if r.source = env.Types.Resolve(tm.Source); r.source == nil {
		addUnknownType(res, env, tp, "source", tm.Source)
	}

	if r.target = env.Types.Resolve(tm.Target); r.target == nil {
		addUnknownType(res, env, tp, "target", tm.Target)
	}

	if r.source == nil || r.target == nil {
		return nil
	}

	seen := make(map[string]struct{})

	for _, fm := range tm.Fields {
		if _, dup := seen[fm.Target]; dup {
			res.AddError(diagnostic.CodeConfigurationFailed,
				fmt.Sprintf("target %q is mapped more than once", fm.Target), tp, fm.Target)
		}

		seen[fm.Target] = struct{}{}
		validateField(res, env, r, tp, fm)
	}

	for _, path := range tm.Ignore {
		if _, dup := seen[path]; dup {
			res.AddError(diagnostic.CodeConfigurationFailed,
				fmt.Sprintf("target %q is both mapped and ignored", path), tp, path)
		}

		memberAt(res, env, r.target, tp, "target", path)
	}

	for _, d := range tm.Derive {
		declared, derived := env.Types.Resolve(d.Declared), env.Types.Resolve(d.Derived)
		if declared == nil {
			addUnknownType(res, env, tp, "declared", d.Declared)
		}

		if derived == nil {
			addUnknownType(res, env, tp, "derived", d.Derived)
		}

		if declared != nil && derived != nil && !derivable(derived, declared) {
			res.AddError(diagnostic.CodeConfigurationFailed,
				fmt.Sprintf("%s does not implement %s", d.Derived, d.Declared), tp, "")
		}
	}

	return r
}

func validateField(res *diagnostic.Diagnostics, env Env, r *resolved, tp string, fm FieldMapping) {
	if fm.Target == "" {
		res.AddError(diagnostic.CodeConfigurationFailed, "field mapping has no target", tp, "")
		return
	}

	target := memberAt(res, env, r.target, tp, "target", fm.Target)

	if fm.Source == "" && fm.Transform == "" && fm.Default == nil {
		res.AddError(diagnostic.CodeConfigurationFailed,
			"field mapping needs a source, a transform or a default", tp, fm.Target)
	}

	if fm.Source != "" && fm.Transform != "" {
		res.AddError(diagnostic.CodeConfigurationFailed,
			"a transform receives the source object; drop either source or transform", tp, fm.Target)
	}

	if fm.Source != "" {
		memberAt(res, env, r.source, tp, "source", fm.Source)
	}

	if fm.Transform != "" && !env.Transforms.Has(fm.Transform) {
		d := diagnostic.Diagnostic{
			Severity:  diagnostic.DiagnosticError,
			Code:      diagnostic.CodeUnknownTransform,
			Message:   fmt.Sprintf("transform %q is not registered", fm.Transform),
			TypePair:  tp,
			FieldPath: fm.Target,
		}
		d.Suggestions = closest(fm.Transform, env.Transforms.Names())
		res.Add(d)
	}

	if fm.Default != nil && target != nil {
		if _, err := defaultValue(*fm.Default, target.Type(), env.Conversions); err != nil {
			res.AddError(diagnostic.CodeInvalidDefault, err.Error(), tp, fm.Target)
		}
	}
}

// memberAt resolves a dotted member path below t, reporting unknown members with the
// closest names of the type that lacks them.
func memberAt(res *diagnostic.Diagnostics, env Env, t reflect.Type, tp, side, path string) *analyze.QualifiedMember {
	current := env.Finder.Root(t)

	for _, name := range strings.Split(path, ".") {
		next := current.AppendPath(name)
		if next == nil {
			var names []string
			for _, m := range env.Finder.Members(current.Type()) {
				names = append(names, m.Name)
			}

			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        diagnostic.CodeUnknownMember,
				Message:     fmt.Sprintf("%s member %q not found in %s", side, name, current.Type()),
				TypePair:    tp,
				FieldPath:   path,
				Suggestions: closest(name, names),
			})

			return nil
		}

		current = next
	}

	return current
}

func addUnknownType(res *diagnostic.Diagnostics, env Env, tp, side, name string) {
	res.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeUnknownType,
		Message:     fmt.Sprintf("%s type %q not registered", side, name),
		TypePair:    tp,
		Suggestions: closest(name, env.Types.Names()),
	})
}

// closest ranks names by similarity to name and returns up to three close ones.
func closest(name string, names []string) []string {
	const minNameScore = 0.6

	sources := make([]match.Named, len(names))
	for i, n := range names {
		sources[i] = match.Named{Name: n}
	}

	var out []string

	for _, c := range match.RankCandidates(match.Named{Name: name}, sources) {
		if c.NameScore >= minNameScore {
			out = append(out, c.Source.Name)
		}
	}

	if len(out) > 3 {
		out = out[:3]
	}

	return out
}

// defaultValue converts a literal to t. Complex and enumerable targets take no defaults.
func defaultValue(literal string, t reflect.Type, allowed primitive.CategoryEnum) (reflect.Value, error) {
	if analyze.ShapeOf(t) != analyze.ShapeSimple {
		return reflect.Value{}, fmt.Errorf("default %q: %s is not a simple type", literal, t)
	}

	v, err := primitive.Convert(reflect.ValueOf(literal), t, allowed|primitive.CategoryTextNumber|
		primitive.CategoryTextualBool|primitive.CategoryDatetime|primitive.CategoryDuration|
		primitive.CategoryEnumString|primitive.CategoryText)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("default %q: %w", literal, err)
	}

	return v, nil
}

func derivable(derived, declared reflect.Type) bool {
	return derived.AssignableTo(declared) || reflect.PointerTo(derived).AssignableTo(declared)
}
