package match

import (
	"slices"
	"strings"
)

// collectionSuffixes mark a member name as naming a collection of the stem before them.
var collectionSuffixes = []string{"collection", "array", "list", "set"}

// Naming holds the normalized naming conventions used for matching.
type Naming struct {
	Prefixes        []string
	Suffixes        []string
	IdentifierNames []string
}

// NewNaming normalizes the configured affixes and identifier names.
func NewNaming(prefixes, suffixes, identifierNames []string) Naming {
	return Naming{
		Prefixes:        normalizeAll(prefixes),
		Suffixes:        normalizeAll(suffixes),
		IdentifierNames: normalizeAll(identifierNames),
	}
}

func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n := NormalizeIdent(name); n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}

	return out
}

// MatchingNames returns the normalized names a member called name can be matched by.
// The first entry is always the plain normalized name, followed by the name with configured
// affixes stripped and, for enumerable members, singular and plural aliases.
func (n Naming) MatchingNames(name string, enumerable bool) []string {
	normalized := NormalizeIdent(name)
	names := []string{normalized}

	if stripped := StripAffixes(normalized, n.Prefixes, n.Suffixes); stripped != normalized {
		names = append(names, stripped)
	}

	if enumerable {
		for _, base := range slices.Clone(names) {
			names = appendUnique(names, pluralAliases(base)...)
		}
	}

	return names
}

// IsIdentifier reports whether a member called memberName identifies values of a type
// called typeName: id, identifier, <typename>id or a configured identifier name.
func (n Naming) IsIdentifier(typeName, memberName string) bool {
	normalized := NormalizeIdent(memberName)

	switch normalized {
	case "id", "identifier":
		return true
	case NormalizeIdent(typeName) + "id":
		return typeName != ""
	}

	return slices.Contains(n.IdentifierNames, normalized)
}

func pluralAliases(name string) []string {
	var aliases []string

	for _, suffix := range collectionSuffixes {
		if stem, ok := strings.CutSuffix(name, suffix); ok && stem != "" {
			return append(aliases, stem, plural(stem))
		}
	}

	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		aliases = append(aliases, name[:len(name)-3]+"y")
	case strings.HasSuffix(name, "ses") && len(name) > 3:
		aliases = append(aliases, name[:len(name)-2])
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && len(name) > 1:
		aliases = append(aliases, name[:len(name)-1])
	default:
		aliases = append(aliases, plural(name))
	}

	return aliases
}

func plural(name string) string {
	switch {
	case strings.HasSuffix(name, "y") && len(name) > 1 && !strings.ContainsRune("aeiou", rune(name[len(name)-2])):
		return name[:len(name)-1] + "ies"
	case strings.HasSuffix(name, "s"), strings.HasSuffix(name, "x"), strings.HasSuffix(name, "ch"), strings.HasSuffix(name, "sh"):
		return name + "es"
	default:
		return name + "s"
	}
}

func appendUnique(names []string, more ...string) []string {
	for _, name := range more {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	return names
}

// JoinedNames concatenates one alias from every chain element, for all combinations.
// The order follows the alias order of each element, outer elements varying slowest.
func JoinedNames(chain [][]string) []string {
	joined := []string{""}

	for _, aliases := range chain {
		next := make([]string, 0, len(joined)*len(aliases))
		for _, prefix := range joined {
			for _, alias := range aliases {
				next = appendUnique(next, prefix+alias)
			}
		}

		joined = next
	}

	return joined
}

// Matches reports whether the two name sets share a name.
func Matches(a, b []string) bool {
	for _, name := range a {
		if slices.Contains(b, name) {
			return true
		}
	}

	return false
}

// CouldMatch reports whether some name of full starts with some name of partial,
// meaning a longer chain continuing partial may still match full.
func CouldMatch(partial, full []string) bool {
	for _, prefix := range partial {
		for _, name := range full {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}

	return false
}
