package plan

import (
	"sync"
	"sync/atomic"
)

// Cache holds compiled plans. Each key is compiled at most once between resets, also
// when several goroutines ask for it at the same time.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*cacheEntry
	compiles atomic.Int64
}

type cacheEntry struct {
	once sync.Once
	plan *Plan
	err  error
}

// Stats reports cache activity.
type Stats struct {
	// Plans is the number of cached plans.
	Plans int `yaml:"plans" json:"plans"`
	// Compilations counts every compilation since the cache was created.
	Compilations int64 `yaml:"compilations" json:"compilations"`
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*cacheEntry)}
}

// Get returns the plan of key, compiling it on first use. Failed compilations are
// cached as well, so a broken key fails fast.
func (c *Cache) Get(key Key, compile func(Key) (*Plan, error)) (*Plan, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		c.compiles.Add(1)
		entry.plan, entry.err = compile(key)
	})

	return entry.plan, entry.err
}

// Reset drops every cached plan.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*cacheEntry)
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{Plans: len(c.entries), Compilations: c.compiles.Load()}
}
