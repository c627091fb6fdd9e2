package remote

import (
	"testing"
	"time"
)

func TestCacheKeyStability(t *testing.T) {
	a := CacheKey("fetch-subtree", "file", "node", "3")
	b := CacheKey("fetch-subtree", "file", "node", "3")
	if a != b {
		t.Fatalf("expected stable keys, got %q and %q", a, b)
	}
	if a == CacheKey("fetch-subtree", "file", "node", "4") {
		t.Fatalf("expected depth to distinguish keys")
	}
}

func TestCacheExpiresEntries(t *testing.T) {
	cache := newResponseCache(time.Minute, 10)
	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	cache.put("k", "v")
	if _, ok := cache.get("k"); !ok {
		t.Fatalf("expected fresh entry to hit")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := cache.get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if cache.len() != 0 {
		t.Fatalf("expected expired entry evicted on read, len=%d", cache.len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newResponseCache(time.Minute, 2)
	cache.put("a", 1)
	cache.put("b", 2)
	if _, ok := cache.get("a"); !ok {
		t.Fatalf("expected a cached")
	}

	cache.put("c", 3) // b is now the oldest
	if _, ok := cache.get("b"); ok {
		t.Fatalf("expected least-recently-used entry evicted")
	}
	if _, ok := cache.get("a"); !ok {
		t.Fatalf("expected recently-used entry retained")
	}
	if _, ok := cache.get("c"); !ok {
		t.Fatalf("expected newest entry retained")
	}
}

func TestCacheDisabledWhenTTLZero(t *testing.T) {
	cache := newResponseCache(0, 10)
	cache.put("k", "v")
	if _, ok := cache.get("k"); ok {
		t.Fatalf("expected zero TTL to disable caching")
	}
}
