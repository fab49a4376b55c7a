// Package embedcache memoizes query embeddings behind an LRU with per-entry
// expiry, so repeated searches for the same text skip the embedding call.
package embedcache

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultMaxSize = 1000
	DefaultTTL     = 30 * time.Minute
)

type entry struct {
	vector    []float32
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    int
	Misses  int
	Size    int
	MaxSize int
}

// Cache is a query-keyed LRU with TTL expiry. A single mutex guards both the
// underlying LRU and the hit/miss counters.
type Cache struct {
	mu      sync.Mutex
	lru     *lru.Cache[string, entry]
	ttl     time.Duration
	maxSize int
	hits    int
	misses  int
}

// New builds a Cache. maxSize <= 0 uses DefaultMaxSize, ttl <= 0 uses
// DefaultTTL.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	l, _ := lru.New[string, entry](maxSize)
	return &Cache{lru: l, ttl: ttl, maxSize: maxSize}
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached embedding for query. A miss is reported for an
// absent key or an expired one; an expired entry is evicted on the way out.
func (c *Cache) Get(query string) ([]float32, bool) {
	key := normalize(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.vector, true
}

// Set inserts or refreshes the entry for query, sliding its expiry forward
// and moving it to the most-recently-used position. Entries beyond maxSize
// are evicted from the least-recently-used end.
func (c *Cache) Set(query string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(normalize(query), entry{vector: vector, expiresAt: time.Now().Add(c.ttl)})
}

// Has reports whether query has a live entry, without touching hit/miss
// counters or recency order.
func (c *Cache) Has(query string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Peek(normalize(query))
	return ok && !time.Now().After(e.expiresAt)
}

// Prune removes every expired entry and reports how many were evicted.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	evicted := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if ok && now.After(e.expiresAt) {
			c.lru.Remove(key)
			evicted++
		}
	}
	return evicted
}

// Clear empties the cache and resets the hit/miss counters to zero.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.hits = 0
	c.misses = 0
}

// StatsSnapshot returns the current hit/miss/size counters.
func (c *Cache) StatsSnapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: c.lru.Len(), MaxSize: c.maxSize}
}

// HitRate returns hits/(hits+misses), or 0 when nothing has been recorded.
func (c *Cache) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}
