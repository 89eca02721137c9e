package translate

import (
	"sort"
	"sync"
)

// CacheKey identifies a translation: the engine that produced it and the
// normalized source text (see Request.CacheText).
type CacheKey struct {
	Engine EngineType
	Text   string
}

// CacheEntry is an immutable cached translation.
type CacheEntry struct {
	Engine EngineType `json:"engine"`
	Key    string     `json:"key"`
	Result string     `json:"result"`
}

// Cache memoizes translations for the life of the process. Entries are
// written at most once per key and never evicted; it is sized for one
// editing session, not for a long-running shared service with unbounded
// input.
type Cache struct {
	mu      sync.RWMutex
	entries map[CacheKey]CacheEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]CacheEntry)}
}

// Get returns the cached result for key.
func (c *Cache) Get(key CacheKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.Result, ok
}

// Add stores result under key unless an entry already exists, and returns
// the stored result. The first writer wins.
func (c *Cache) Add(key CacheKey, result string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.Result
	}
	c.entries[key] = CacheEntry{Engine: key.Engine, Key: key.Text, Result: result}
	cacheEntries.Set(float64(len(c.entries)))
	return result
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a snapshot of the cache ordered by engine and key.
func (c *Cache) Entries() []CacheEntry {
	c.mu.RLock()
	out := make([]CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Engine != out[j].Engine {
			return out[i].Engine < out[j].Engine
		}
		return out[i].Key < out[j].Key
	})
	return out
}
