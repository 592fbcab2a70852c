package plan

import (
	"context"
	"reflect"
	"sync"

	"object-mapper/internal/analyze"
	"object-mapper/internal/config"
	"object-mapper/internal/match"
	"object-mapper/options"
)

// Engine compiles, caches and executes mapping plans for one configuration.
// It is safe for concurrent use.
type Engine struct {
	settings options.Settings
	finder   *analyze.Finder
	config   *config.Set
	resolver *Resolver
	cache    *Cache

	// compilations hold the read lock, Reset the write lock
	mu sync.RWMutex
}

// NewEngine creates an engine over cfg. A nil cfg is an empty configuration.
func NewEngine(cfg *config.Set, settings options.Settings) *Engine {
	if cfg == nil {
		cfg = config.NewSet()
	}

	finder := analyze.NewFinder(match.NewNaming(settings.NamePrefixes, settings.NameSuffixes, settings.IdentifierNames))

	return &Engine{
		settings: settings,
		finder:   finder,
		config:   cfg,
		resolver: NewResolver(finder, cfg, settings),
		cache:    NewCache(),
	}
}

// Config returns the configuration of the engine.
func (e *Engine) Config() *config.Set { return e.config }

// Finder returns the member finder of the engine.
func (e *Engine) Finder() *analyze.Finder { return e.finder }

// Settings returns the settings of the engine.
func (e *Engine) Settings() options.Settings { return e.settings }

// Plan returns the cached plan of key, compiling it on first use.
func (e *Engine) Plan(ctx context.Context, key Key) (*Plan, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.cache.Get(key, func(k Key) (*Plan, error) {
		return e.resolver.Compile(ctx, k)
	})
}

// Reset drops every compiled plan. In-flight compilations finish first; plans already
// handed out stay valid for the callers holding them.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache.Reset()
	e.resolver.Reset()
	e.settings.Logger.Debug("plan cache reset")
}

// Stats returns plan cache counters.
func (e *Engine) Stats() Stats {
	return e.cache.Stats()
}

// Map maps source onto a value of targetType under ruleSet. For Merge and Overwrite,
// existing is the target to update; it may be the zero Value. The result is the mapped
// target, which is existing itself when it was updated in place.
func (e *Engine) Map(
	ctx context.Context, ruleSet config.RuleSet, source reflect.Value, targetType reflect.Type, existing reflect.Value,
) (reflect.Value, error) {
	x := &executor{engine: e, mc: NewMappingContext(ctx, ruleSet)}

	if isNil(source) {
		if ruleSet.ReusesTarget() && existing.IsValid() {
			return existing, nil
		}

		return reflect.Zero(targetType), nil
	}

	return x.mapValue(source, source.Type(), targetType, existing)
}
