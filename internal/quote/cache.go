package quote

import (
	"sync"
	"time"
)

type cacheEntry struct {
	batch     Batch
	expiresAt time.Time
}

// Cache memoizes batch results for a fixed TTL. Entries are only ever
// invalidated by expiry. A non-positive TTL disables caching.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache creates a cache. now may be nil, in which case time.Now is used.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the live entry for key, if any.
func (c *Cache) Get(key string) (Batch, bool) {
	if c.ttl <= 0 {
		return Batch{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Batch{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return Batch{}, false
	}
	return entry.batch, true
}

// Put stores batch under key until the TTL elapses.
func (c *Cache) Put(key string, batch Batch) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{batch: batch, expiresAt: c.now().Add(c.ttl)}
}

// PurgeExpired drops every expired entry and returns how many were removed.
func (c *Cache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
