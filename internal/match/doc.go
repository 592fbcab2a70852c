// Package match provides name normalization and the name matching rules used to pair
// source members with target members.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for matching
//   - Naming.MatchingNames: the aliases a member can be matched by
//   - JoinedNames, Matches, CouldMatch: flattened name matching across member chains
//   - Levenshtein, RankCandidates: suggestions for target members left without a source
//   - ScoreTypeCompatibility: how well a source type fits a target type
package match
