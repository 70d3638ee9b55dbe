// Package i18n loads translation namespaces from disk behind a TTL cache.
package i18n

import (
	"sync"
	"time"
)

type entry struct {
	value     map[string]any
	expiresAt time.Time
}

// Cache is a read-through map with per-entry expiry and last-write-wins updates.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (c *Cache) Get(key string) (map[string]any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value map[string]any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len counts entries including expired ones not yet evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
