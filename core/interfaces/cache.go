// ABOUTME: Cache interface implemented by every cache tier backend
// ABOUTME: Misses are signalled with ErrCacheMiss so callers can tell them from storage failures

package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when a key is absent or expired.
// Any other error from a tier indicates a storage problem.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache defines the contract for a single cache tier.
// Implementations can be in-memory, SQLite, Redis, or any other backend.
//
// Example usage:
//
//	err := cache.Set(ctx, "fetch:https://example.com/feed.xml", data, 1*time.Hour)
//
//	data, err := cache.Get(ctx, "fetch:https://example.com/feed.xml")
//	if errors.Is(err, interfaces.ErrCacheMiss) {
//		// fetch from origin
//	}
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns ErrCacheMiss if the key is absent or past its TTL.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given key and TTL.
	// A ttl of 0 means the implementation's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error

	// SweepExpired removes expired entries and returns how many were purged.
	SweepExpired(ctx context.Context) (int, error)
}
