package match

import (
	"reflect"
	"sort"
)

// Named is a member name with its type, as seen by candidate ranking.
type Named struct {
	Name string
	Type reflect.Type
}

// Candidate represents a potential source member for a target member.
type Candidate struct {
	Source Named
	Target Named

	// Scoring components
	NameScore  float64                 // Normalized Levenshtein similarity (0-1)
	TypeCompat TypeCompatibilityResult // Type compatibility result

	// Combined score for ranking (higher is better)
	CombinedScore float64

	NormalizedSourceName string
	NormalizedTargetName string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every source member against the target member and returns
// them sorted by combined score (descending).
func RankCandidates(target Named, sources []Named) CandidateList {
	candidates := make(CandidateList, 0, len(sources))

	targetNorm := NormalizeIdent(target.Name)

	for _, source := range sources {
		// use max of regular and suffix-stripped similarity
		nameScore := max(
			NormalizedLevenshteinScore(source.Name, target.Name),
			NormalizedLevenshteinScoreWithSuffixStrip(source.Name, target.Name),
		)

		typeCompat := ScoreTypeCompatibility(source.Type, target.Type)

		candidates = append(candidates, Candidate{
			Source:               source,
			Target:               target,
			NameScore:            nameScore,
			TypeCompat:           typeCompat,
			CombinedScore:        calculateCombinedScore(nameScore, typeCompat.Compatibility),
			NormalizedSourceName: NormalizeIdent(source.Name),
			NormalizedTargetName: targetNorm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// calculateCombinedScore weights name similarity at 60% and type compatibility at 40%.
func calculateCombinedScore(nameScore float64, typeCompat TypeCompatibility) float64 {
	const (
		nameWeight = 0.6
		typeWeight = 0.4
	)

	var typeScore float64
	switch typeCompat {
	case TypeIdentical:
		typeScore = 1.0
	case TypeAssignable:
		typeScore = 0.9
	case TypeConvertible:
		typeScore = 0.7
	case TypeNeedsTransform:
		typeScore = 0.4
	case TypeIncompatible:
		typeScore = 0.0
	}

	return nameScore*nameWeight + typeScore*typeWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by combined score descending, then by source name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Source.Name < c[j].Source.Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates with combined score above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.CombinedScore >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Names returns the source names of the candidates in rank order.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Source.Name
	}

	return names
}

// DefaultSuggestionScore is the minimum combined score for a candidate to be suggested.
const DefaultSuggestionScore = 0.55
