// Package analyze discovers the members of Go types and qualifies them into member chains.
//
// Discovery is reflection based and runs once per type; results are cached by the Finder
// that owns them.
//
// Key types:
//   - Member: a field, getter/setter method pair, constructor parameter or collection element
//   - Finder: discovers and caches members, qualified roots and identifier members
//   - QualifiedMember: an immutable member chain from a mapping root with its matching names
package analyze
