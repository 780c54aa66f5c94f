package common

import (
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
)

// DefaultCacheSize is used when a non-positive size is requested.
const DefaultCacheSize = 256

type cacheKey struct {
	src   string
	arity expr.Arity
}

type cacheEntry struct {
	expr *expr.Expr
	err  error
}

// Cache memoizes parsed expressions by (source, arity). Parse failures are
// cached as well.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheStats is a point-in-time view of cache activity.
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
	Size    int    `json:"size"`
}

// NewCache creates a cache holding at most size expressions.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{lru: lru.New(size)}
}

// Parse returns the parsed expression for src, parsing on a miss.
func (c *Cache) Parse(src string, arity expr.Arity) (*expr.Expr, error) {
	key := cacheKey{src: src, arity: arity}

	c.mu.Lock()
	if v, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		c.hits.Add(1)
		entry := v.(cacheEntry)
		return entry.expr, entry.err
	}
	c.mu.Unlock()

	c.misses.Add(1)
	e, err := expr.Parse(src, arity)

	c.mu.Lock()
	c.lru.Add(key, cacheEntry{expr: e, err: err})
	c.mu.Unlock()
	return e, err
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	entries := c.lru.Len()
	size := c.lru.MaxEntries
	c.mu.Unlock()

	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: entries,
		Size:    size,
	}
}

// Clear drops every cached expression. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}
