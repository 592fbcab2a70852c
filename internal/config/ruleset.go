package config

import (
	"fmt"
	"slices"
	"strings"

	"object-mapper/internal/common"
)

// RuleSet is the mapping mode.
type RuleSet int

const (
	CreateNew RuleSet = iota // always construct the target
	Merge                    // reuse and augment an existing target
	Overwrite                // reuse an existing target, replacing its contents
)

// RuleSets lists every rule set in declaration order.
var RuleSets = []RuleSet{CreateNew, Merge, Overwrite}

// String returns the lower-case rule set name used in mapping files.
func (r RuleSet) String() string {
	switch r {
	case CreateNew:
		return "new"
	case Merge:
		return "merge"
	case Overwrite:
		return "overwrite"
	default:
		return common.UnknownStr
	}
}

// ReusesTarget reports whether an existing target instance is kept.
func (r RuleSet) ReusesTarget() bool {
	return r != CreateNew
}

// ParseRuleSet parses a rule set name, case-insensitively. "create", "createnew" and "create_new" are
// accepted for CreateNew.
func ParseRuleSet(s string) (RuleSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "create", "createnew", "create_new":
		return CreateNew, nil
	case "merge", "onto":
		return Merge, nil
	case "overwrite", "over":
		return Overwrite, nil
	default:
		return 0, fmt.Errorf("%w: unknown rule set %q", ErrInvalidConfiguration, s)
	}
}

func coversRuleSet(scoped []RuleSet, r RuleSet) bool {
	return len(scoped) == 0 || slices.Contains(scoped, r)
}

func overlapRuleSets(a, b []RuleSet) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}

	for _, r := range a {
		if slices.Contains(b, r) {
			return true
		}
	}

	return false
}
