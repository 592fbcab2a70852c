// Package mapping provides the schema, parsing, validation and application of mapping
// files: declarative engine configuration written in YAML or TOML.
//
// # Key capabilities
//
//   - Pin explicit member mappings, including nested paths ("Customer.Name")
//   - Simplified "121" shorthand for 1:1 mappings
//   - Ignore target members
//   - Set defaults, converted to the target member type
//   - Compute members with named transforms registered in code
//   - Restrict a mapping to rule sets
//   - Name the concrete type created for an interface target
//
// # Schema Overview
//
//	version: "1"
//	mappings:
//	  - source: store.Order
//	    target: warehouse.Order
//	    rule_sets: [create_new, overwrite]
//	    121:
//	      OrderID: ID
//	      Customer.Name: CustomerName
//	    fields:
//	      - target: Status
//	        default: "pending"
//	      - target: Total
//	        transform: OrderTotal
//	    ignore:
//	      - InternalNote
//	    derive:
//	      - declared: warehouse.Payment
//	        derived: warehouse.CardPayment
//
// The same structure is accepted as TOML, with [[mappings]] and [[mappings.fields]] tables.
//
// Type names resolve against a TypeRegistry, either fully qualified
// ("object-mapper/store.Order"), by package alias ("store.Order") or by bare name.
// Transforms resolve against a TransformRegistry; a transform receives the source object
// and optionally the target object.
//
// Validate reports every problem as a diagnostic with suggestions for misspelled names.
// Apply validates and registers the file in a configuration set, all or nothing.
package mapping
