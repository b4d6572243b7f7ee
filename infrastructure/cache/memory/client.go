// ABOUTME: Fast volatile cache tier backed by patrickmn/go-cache
// ABOUTME: Each entry carries an explicit expiration stored alongside the value

package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"rssfilter-api/core/interfaces"
)

// MemoryCache implements the Cache interface using an in-process store
type MemoryCache struct {
	cache      *gocache.Cache
	defaultTTL time.Duration
}

// NewMemoryCache creates a new in-memory cache tier. Entries expire
// defaultTTL after creation unless a Set overrides it; expired entries
// are purged in the background every cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache:      gocache.New(defaultTTL, cleanupInterval),
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	value, found := c.cache.Get(key)
	if !found {
		return nil, interfaces.ErrCacheMiss
	}

	stored, ok := value.([]byte)
	if !ok {
		// A foreign value under our key is unusable; evict it.
		c.cache.Delete(key)
		return nil, interfaces.ErrCacheMiss
	}

	// Return a copy so callers cannot mutate the cached value
	result := make([]byte, len(stored))
	copy(result, stored)
	return result, nil
}

// Set stores a value in the cache with the given TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.cache.Set(key, valueCopy, ttl)
	return nil
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.cache.Delete(key)
	return nil
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.cache.Flush()
	return nil
}

// SweepExpired purges expired entries and returns how many were removed
func (c *MemoryCache) SweepExpired(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	before := c.cache.ItemCount()
	c.cache.DeleteExpired()
	removed := before - c.cache.ItemCount()
	if removed < 0 {
		removed = 0
	}
	return removed, nil
}
