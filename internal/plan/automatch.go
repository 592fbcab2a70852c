package plan

import (
	"fmt"
	"reflect"

	"object-mapper/internal/analyze"
	"object-mapper/internal/common"
	"object-mapper/internal/diagnostic"
	"object-mapper/internal/match"
	"object-mapper/node"
)

const maxSuggestions = 3

// matchSource finds the source chain below source whose joined names match target.
// The search descends depth first, in member discovery order, into complex members
// whose chain may still match. An exact case-sensitive name wins over the first match.
// Matches that cannot be converted to the target type are returned as rejected.
func (r *Resolver) matchSource(source, target *analyze.QualifiedMember) (best *analyze.QualifiedMember, rejected []*analyze.QualifiedMember) {
	var found []*analyze.QualifiedMember

	var visit func(q *analyze.QualifiedMember)
	visit = func(q *analyze.QualifiedMember) {
		for _, m := range r.finder.Readable(q.Type()) {
			child := q.Append(m)

			if child.Matches(target) {
				if r.convertible(child.Type(), target.Type()) {
					found = append(found, child)
				} else {
					rejected = append(rejected, child)
				}
			}

			if m.IsComplex() && child.CouldMatch(target) {
				visit(child)
			}
		}
	}

	visit(source)

	if len(found) == 0 {
		return nil, rejected
	}

	raw := target.RawName()
	for _, candidate := range found {
		if candidate.RawName() == raw {
			return candidate, rejected
		}
	}

	return found[0], rejected
}

// hasNestedCandidates reports whether some source chain continues the name of the complex
// target member, like CustomerName for Customer, so that a plan for the member itself
// may populate its members from the same source object.
func (r *Resolver) hasNestedCandidates(source, target *analyze.QualifiedMember) bool {
	for _, m := range r.finder.Readable(source.Type()) {
		if m.IsEnumerable() {
			continue
		}

		child := source.Append(m)
		if target.CouldMatch(child) && !child.Matches(target) {
			return true
		}

		if m.IsComplex() && child.CouldMatch(target) && r.hasNestedCandidates(child, target) {
			return true
		}
	}

	return false
}

// convertible reports whether a source value of type src can populate dst. Interface
// sources are checked when their runtime type is known.
func (r *Resolver) convertible(src, dst reflect.Type) bool {
	if base := node.Base(src); base != nil && base.Kind() == reflect.Interface {
		return true
	}

	return node.Dispatch(src, dst, r.settings.Conversions) != node.DispatcherUnknown
}

// reportUnmapped records a target member without data source, suggesting similar
// source members.
func (r *Resolver) reportUnmapped(diags *diagnostic.Diagnostics, typePair string, source, target *analyze.QualifiedMember) {
	var sources []match.Named
	for _, m := range r.finder.Readable(source.Type()) {
		sources = append(sources, match.Named{Name: m.Name, Type: m.Type})
	}

	candidates := match.RankCandidates(match.Named{Name: target.Member().Name, Type: target.Type()}, sources)

	diags.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticWarning,
		Code:        diagnostic.CodeNoDataSource,
		Message:     fmt.Sprintf("no data source for %s", target.Path()),
		TypePair:    typePair,
		FieldPath:   target.Path(),
		Suggestions: candidates.AboveThreshold(match.DefaultSuggestionScore).Top(maxSuggestions).Names(),
	})
}

func (r *Resolver) reportRejected(diags *diagnostic.Diagnostics, typePair string, target *analyze.QualifiedMember, rejected []*analyze.QualifiedMember) {
	for _, q := range rejected {
		diags.AddWarning(diagnostic.CodeUnconvertibleMatch,
			fmt.Sprintf("source.%s matches by name but %s does not convert to %s",
				q.Path(), common.TypeName(q.Type()), common.TypeName(target.Type())),
			typePair, target.Path())
	}
}
