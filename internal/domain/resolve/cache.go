package resolve

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a TTL-bounded store of resolved results keyed by
// "{platform}:{identifier}". Entries expire a fixed interval after insertion
// and are never mutated in place; only successful resolutions are stored.
// Safe for concurrent use.
type Cache struct {
	entries *expirable.LRU[string, any]
	ttl     time.Duration
}

// NewCache builds a cache with the given entry lifetime. Size is unbounded;
// the TTL keeps growth in check since entries are request driven.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		entries: expirable.NewLRU[string, any](0, nil, ttl),
		ttl:     ttl,
	}
}

// Get returns the cached result for the content, if present and fresh.
func (c *Cache) Get(id ContentID) (any, bool) {
	return c.entries.Get(id.CacheKey())
}

// Put stores a resolved result for the content.
func (c *Cache) Put(id ContentID, result any) {
	c.entries.Add(id.CacheKey(), result)
}

// TTL reports the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
