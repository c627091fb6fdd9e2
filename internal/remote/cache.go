package remote

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// CacheKey derives a stable digest for one remote call from its identifying
// parameters. Empty fields still contribute a separator so distinct shapes
// never collide.
func CacheKey(parts ...string) string {
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "cache-v1-" + hex.EncodeToString(sum[:8])
}

type cacheEntry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// responseCache is an in-process TTL + LRU cache. It is consulted before any
// network call and updated only on success. Safe for concurrent use from
// overlapping pipeline invocations.
type responseCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List // front = most recently used
	entries    map[string]*list.Element
	now        func() time.Time
}

func newResponseCache(ttl time.Duration, maxEntries int) *responseCache {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &responseCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}
}

func (c *responseCache) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := element.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.order.Remove(element)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(element)
	return entry.value, true
}

func (c *responseCache) put(key string, value interface{}) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		entry := element.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(element)
		return
	}

	element := c.order.PushFront(&cacheEntry{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[key] = element

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
