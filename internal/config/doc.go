// Package config holds the mapping configuration registered on an engine: ignored members,
// configured data sources, object factories, constructors, callbacks and derived type pairs.
//
// Every item is scoped by source type, target type and rule sets. Member paths are dotted
// paths relative to the scoped target type, like "Address.Line1".
package config
