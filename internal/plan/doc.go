// Package plan compiles and executes mapping plans.
//
// A plan is the ordered list of operations mapping one source type onto one target
// type under a rule set. Plans are compiled on first use and cached per Key.
//
// Compilation pipeline:
//  1. Classify the target as simple, enumerable or complex.
//  2. For complex targets, short-circuit on nil sources, guard against reference
//     cycles, resolve the construction and register the created target for the
//     source identity.
//  3. For every writable member, pick data sources: configured ones first, then the
//     best source member matched by name, including flattened paths.
//  4. For enumerable targets, pick a reconciliation strategy from the rule set and
//     whether elements carry identifiers.
//  5. Emit diagnostics for unmapped members, ignored members and unconvertible matches.
//
// Nested plans are referenced by key and compiled when first executed or described.
package plan
