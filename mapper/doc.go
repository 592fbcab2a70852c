// Package mapper maps object graphs onto other object graphs.
//
// For every source type, target type and rule set the mapper compiles a plan once: how
// the target is created, which source member populates each target member and how
// collections are reconciled. Plans are cached and reused by every later call.
//
// Three rule sets are supported:
//   - CreateNew (Map) always builds a new target graph
//   - Merge (MapOnto) updates an existing target, keeping members without a source value
//     and merging collections, by element identity where elements have an identifier
//   - Overwrite (MapOver) updates an existing target so that it matches the source
//
// Members are matched by normalized name, including flattened paths such as
// CustomerName for Customer.Name. Configure overrides matching per type pair, and
// LoadConfigFile reads the same configuration from YAML or TOML.
//
//	m := mapper.New()
//	err := mapper.Configure[store.Order, warehouse.Order](m).
//		MapFrom("Number").To("OrderNumber").
//		Ignore("Notes").
//		Err()
//	out, err := mapper.Map[warehouse.Order](m, order)
package mapper
