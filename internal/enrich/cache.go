package enrich

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is a lookaside store of enrichment results keyed by memo ID. Readers
// may miss and recompute; stale entries expire after the TTL.
type Cache struct {
	c *cache.Cache
}

// NewCache creates a Cache. A ttl <= 0 keeps entries until invalidated.
func NewCache(ttl time.Duration) *Cache {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &Cache{c: cache.New(ttl, cleanup)}
}

// Get returns the cached fields for memoID.
func (c *Cache) Get(memoID string) (Fields, bool) {
	v, ok := c.c.Get(memoID)
	if !ok {
		return Fields{}, false
	}
	f, ok := v.(Fields)
	return f, ok
}

// Set stores fields for memoID with the default TTL.
func (c *Cache) Set(memoID string, f Fields) {
	c.c.SetDefault(memoID, f)
}

// Invalidate drops the entry for memoID.
func (c *Cache) Invalidate(memoID string) {
	c.c.Delete(memoID)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.c.Flush()
}

// Len returns the number of entries, including expired ones not yet cleaned up.
func (c *Cache) Len() int {
	return c.c.ItemCount()
}
