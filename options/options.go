// Package options holds the settings a mapping engine is created with.
package options

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"object-mapper/primitive"
)

// TracerName is the instrumentation name used for the default tracer.
const TracerName = "object-mapper"

// Settings configures one mapping engine.
type Settings struct {
	// Conversions lists the scalar conversion categories member matching may use.
	Conversions primitive.CategoryEnum
	// NamePrefixes are stripped from member names before matching, e.g. "str" or "m".
	NamePrefixes []string
	// NameSuffixes are stripped from member names before matching, e.g. "Value".
	NameSuffixes []string
	// IdentifierNames are extra member names treated as element identity for collection merges.
	IdentifierNames []string
	// Logger receives compilation and mapping debug output.
	Logger *slog.Logger
	// Tracer wraps plan compilations in spans.
	Tracer trace.Tracer
}

// Option mutates Settings.
type Option func(*Settings)

// Default returns the settings used when no option is given.
func Default() Settings {
	return Settings{
		Conversions: primitive.CategoryAll,
		Logger:      slog.New(slog.DiscardHandler),
		Tracer:      noop.NewTracerProvider().Tracer(TracerName),
	}
}

// Apply returns the default settings modified by opts.
func Apply(opts ...Option) Settings {
	s := Default()
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// WithConversions replaces the allowed conversion categories.
func WithConversions(categories primitive.CategoryEnum) Option {
	return func(s *Settings) { s.Conversions = categories }
}

// WithoutConversions removes categories from the allowed set.
func WithoutConversions(categories primitive.CategoryEnum) Option {
	return func(s *Settings) { s.Conversions &^= categories }
}

// WithNamePrefixes adds member name prefixes ignored while matching.
func WithNamePrefixes(prefixes ...string) Option {
	return func(s *Settings) { s.NamePrefixes = append(s.NamePrefixes, prefixes...) }
}

// WithNameSuffixes adds member name suffixes ignored while matching.
func WithNameSuffixes(suffixes ...string) Option {
	return func(s *Settings) { s.NameSuffixes = append(s.NameSuffixes, suffixes...) }
}

// WithIdentifierNames adds member names that identify collection elements.
func WithIdentifierNames(names ...string) Option {
	return func(s *Settings) { s.IdentifierNames = append(s.IdentifierNames, names...) }
}

// WithLogger sets the logger. A nil logger keeps the default one.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithTracer sets the tracer. A nil tracer keeps the default one.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Settings) {
		if tracer != nil {
			s.Tracer = tracer
		}
	}
}
