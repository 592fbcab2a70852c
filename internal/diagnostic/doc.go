// Package diagnostic provides structured warnings, errors, and
// "why this mapped" explanations for the caster generator.
//
// Key capabilities:
//   - Unmapped field warnings
//   - Ambiguous match reports with top-N candidates
//   - Unsafe conversion warnings
//   - Explanation of mapping decisions
package diagnostic
