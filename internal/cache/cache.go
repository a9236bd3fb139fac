package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a read-through cache for a single derived value per key. It holds
// the value together with its last refresh time and refreshes through the
// loader once the caller-supplied TTL has elapsed. Intended for derived
// statistics, not for entities.
type Cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry[T]
}

type entry[T any] struct {
	value         T
	lastRefreshed time.Time
}

// Loader computes a fresh value on cache miss or expiry.
type Loader[T any] func(ctx context.Context) (T, error)

// New creates a cache with the given TTL.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]*entry[T]{},
	}
}

// Get returns the cached value for key, refreshing it through load when the
// entry is missing or older than the TTL. A failed refresh does not evict a
// previously cached value; the error is returned to the caller.
func (c *Cache[T]) Get(ctx context.Context, key string, load Loader[T]) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && c.now().Sub(e.lastRefreshed) < c.ttl {
		return e.value, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.entries[key] = &entry[T]{value: value, lastRefreshed: c.now()}

	return value, nil
}

// Invalidate drops the entry for key, forcing the next Get to reload.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
