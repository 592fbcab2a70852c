package plan

import (
	"reflect"

	"object-mapper/internal/analyze"
	"object-mapper/internal/common"
	"object-mapper/internal/config"
	"object-mapper/internal/match"
	"object-mapper/node"
)

// EnumerableStrategy is the reconciliation applied to a target collection.
type EnumerableStrategy int

const (
	// StrategyCreateNew builds a new collection with one mapped element per source element.
	StrategyCreateNew EnumerableStrategy = iota
	// StrategyMergeAppend keeps existing elements and appends every mapped source element.
	StrategyMergeAppend
	// StrategyMergeByIdentity updates elements with a matching identifier in place and
	// appends the others. Unmatched target elements are kept.
	StrategyMergeByIdentity
	// StrategyOverwriteInPlace replaces the content of the existing collection.
	StrategyOverwriteInPlace
	// StrategyOverwriteByIdentity updates matching elements in place, creates new ones and
	// drops target elements without a source counterpart.
	StrategyOverwriteByIdentity
)

// Strategy explanation constants.
const (
	explCreateNew           = "new collection"
	explMergeAppend         = "append all"
	explMergeScalars        = "concatenate scalars"
	explMergeSet            = "set union"
	explMergeByIdentity     = "update by identity, append new"
	explMergeArray          = "update array elements by identity"
	explOverwriteInPlace    = "replace content"
	explOverwriteByIdentity = "update by identity, drop missing"
)

// String returns a human-readable representation of the EnumerableStrategy.
func (s EnumerableStrategy) String() string {
	switch s {
	case StrategyCreateNew:
		return "create-new"
	case StrategyMergeAppend:
		return "merge-append"
	case StrategyMergeByIdentity:
		return "merge-by-identity"
	case StrategyOverwriteInPlace:
		return "overwrite-in-place"
	case StrategyOverwriteByIdentity:
		return "overwrite-by-identity"
	default:
		return common.UnknownStr
	}
}

// selectStrategy picks the enumerable strategy of a rule set. Identity strategies need
// identifiers on both element types.
func selectStrategy(ruleSet config.RuleSet, targetKind node.DispatcherEnum, identifiable bool) (EnumerableStrategy, string) {
	switch ruleSet {
	case config.Merge:
		switch {
		case identifiable && targetKind == node.DispatcherArray:
			return StrategyMergeByIdentity, explMergeArray
		case identifiable:
			return StrategyMergeByIdentity, explMergeByIdentity
		case targetKind == node.DispatcherSet:
			return StrategyMergeAppend, explMergeSet
		default:
			return StrategyMergeAppend, explMergeAppend
		}

	case config.Overwrite:
		if identifiable {
			return StrategyOverwriteByIdentity, explOverwriteByIdentity
		}

		return StrategyOverwriteInPlace, explOverwriteInPlace

	default:
		return StrategyCreateNew, explCreateNew
	}
}

// elementIdentifiers returns the identifier members of both element types when
// elements can be matched by identity.
func elementIdentifiers(
	finder *analyze.Finder, sourceElem, targetElem reflect.Type,
) (source, target *analyze.Member) {
	if analyze.ShapeOf(sourceElem) != analyze.ShapeComplex || analyze.ShapeOf(targetElem) != analyze.ShapeComplex {
		return nil, nil
	}

	source, target = finder.Identifier(sourceElem), finder.Identifier(targetElem)
	if source == nil || target == nil {
		return nil, nil
	}

	// identifiers must at least be comparable after conversion
	if match.ScoreTypeCompatibility(source.Type, target.Type).Compatibility == match.TypeIncompatible {
		return nil, nil
	}

	return source, target
}

// explainStrategy describes an enumerable plan for descriptions.
func explainStrategy(p *EnumerablePlan, ruleSet config.RuleSet) string {
	_, expl := selectStrategy(ruleSet, p.TargetKind, p.Identifiable())
	if p.Strategy == StrategyMergeAppend && p.ElementShape == analyze.ShapeSimple && p.TargetKind != node.DispatcherSet {
		expl = explMergeScalars
	}

	if p.Identifiable() {
		expl += " (" + p.SourceID.Name + " = " + p.TargetID.Name + ")"
	}

	return expl
}
