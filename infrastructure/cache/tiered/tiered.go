// ABOUTME: Read-through, write-through aggregate over the ordered cache tiers
// ABOUTME: Deep hits are promoted into faster tiers using each tier's own default TTL

package tiered

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreerrors "rssfilter-api/core/errors"
	"rssfilter-api/core/interfaces"
)

// ErrTierDisabled is returned by tier-restricted operations when the
// named tier is not enabled. A restricted operation never falls back to
// another tier.
var ErrTierDisabled = errors.New("cache tier not enabled")

// Tier is one enabled cache level in the aggregate.
type Tier struct {
	// Name identifies the tier ("memory", "sqlite", "redis")
	Name string

	// Cache is the tier's backend
	Cache interfaces.Cache

	// DefaultTTL is the tier's own TTL, used for promotion backfill and
	// for writes that don't specify a TTL
	DefaultTTL time.Duration
}

// TieredCache composes cache tiers ordered fastest first.
//
// Reads go through the tiers in order; a hit below the top backfills
// every faster tier before returning. Writes go to every tier
// independently with no rollback: a tier that fails to write simply
// leaves the key absent in that tier, and the next successful read of a
// still-valid tier converges the others.
type TieredCache struct {
	tiers  []Tier
	logger interfaces.Logger
}

// New creates a tiered cache over the given tiers. Order matters:
// tiers[0] is consulted first on reads.
func New(tiers []Tier, logger interfaces.Logger) *TieredCache {
	return &TieredCache{
		tiers:  tiers,
		logger: logger,
	}
}

// Get retrieves a value, consulting tiers in order. On a hit below the
// top, all faster tiers are backfilled with the value at their own
// default TTL. Storage errors in a tier are recovered as a miss for that
// tier only.
func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, error) {
	for i, tier := range t.tiers {
		value, err := tier.Cache.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, interfaces.ErrCacheMiss) {
				t.recoverTierError(ctx, tier, key, err)
			}
			continue
		}

		// Promote into every faster tier with that tier's own TTL, not
		// the remaining TTL of the hit tier.
		for j := 0; j < i; j++ {
			upper := t.tiers[j]
			if err := upper.Cache.Set(ctx, key, value, upper.DefaultTTL); err != nil {
				t.logger.Warn("cache promotion failed", map[string]interface{}{
					"tier":  upper.Name,
					"key":   key,
					"error": err.Error(),
				})
			}
		}

		return value, nil
	}

	return nil, interfaces.ErrCacheMiss
}

// Set writes the value to every tier independently. A ttl of 0 applies
// each tier's own default TTL; an explicit ttl overrides all of them.
// The returned error reports any tier that failed; there is no rollback.
func (t *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, tier := range t.tiers {
		tierTTL := ttl
		if tierTTL <= 0 {
			tierTTL = tier.DefaultTTL
		}
		if err := tier.Cache.Set(ctx, key, value, tierTTL); err != nil {
			t.logger.Warn("cache tier write failed", map[string]interface{}{
				"tier":  tier.Name,
				"key":   key,
				"error": err.Error(),
			})
			errs = append(errs, fmt.Errorf("tier %s: %w", tier.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Delete removes the key from every tier.
func (t *TieredCache) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Cache.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("tier %s: %w", tier.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Clear empties every tier.
func (t *TieredCache) Clear(ctx context.Context) error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Cache.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tier %s: %w", tier.Name, err))
		}
	}
	return errors.Join(errs...)
}

// SweepExpired purges expired entries from every tier and returns the
// total purged count.
func (t *TieredCache) SweepExpired(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, tier := range t.tiers {
		n, err := tier.Cache.SweepExpired(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("tier %s: %w", tier.Name, err))
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

// GetTier retrieves a value from a single named tier, without promotion.
// Fails with ErrTierDisabled if the tier is not enabled.
func (t *TieredCache) GetTier(ctx context.Context, name, key string) ([]byte, error) {
	tier, ok := t.tier(name)
	if !ok {
		return nil, ErrTierDisabled
	}
	value, err := tier.Cache.Get(ctx, key)
	if err != nil && !errors.Is(err, interfaces.ErrCacheMiss) {
		t.recoverTierError(ctx, tier, key, err)
		return nil, interfaces.ErrCacheMiss
	}
	return value, err
}

// SetTier writes a value to a single named tier.
// Fails with ErrTierDisabled if the tier is not enabled.
func (t *TieredCache) SetTier(ctx context.Context, name, key string, value []byte, ttl time.Duration) error {
	tier, ok := t.tier(name)
	if !ok {
		return ErrTierDisabled
	}
	if ttl <= 0 {
		ttl = tier.DefaultTTL
	}
	return tier.Cache.Set(ctx, key, value, ttl)
}

// DeleteTier removes a key from a single named tier.
// Fails with ErrTierDisabled if the tier is not enabled.
func (t *TieredCache) DeleteTier(ctx context.Context, name, key string) error {
	tier, ok := t.tier(name)
	if !ok {
		return ErrTierDisabled
	}
	return tier.Cache.Delete(ctx, key)
}

// ClearTier empties a single named tier.
// Fails with ErrTierDisabled if the tier is not enabled.
func (t *TieredCache) ClearTier(ctx context.Context, name string) error {
	tier, ok := t.tier(name)
	if !ok {
		return ErrTierDisabled
	}
	return tier.Cache.Clear(ctx)
}

// tier finds an enabled tier by name.
func (t *TieredCache) tier(name string) (Tier, bool) {
	for _, tier := range t.tiers {
		if tier.Name == name {
			return tier, true
		}
	}
	return Tier{}, false
}

// recoverTierError logs a per-key storage error and evicts the offending
// key from the tier where feasible. The error never reaches the caller.
func (t *TieredCache) recoverTierError(ctx context.Context, tier Tier, key string, err error) {
	storageErr := &coreerrors.TierStorageError{Tier: tier.Name, Key: key, Err: err}
	t.logger.Error("cache tier storage error, treating as miss", map[string]interface{}{
		"tier":  tier.Name,
		"key":   key,
		"error": storageErr.Error(),
	})
	if delErr := tier.Cache.Delete(ctx, key); delErr != nil {
		t.logger.Warn("failed to evict corrupt cache entry", map[string]interface{}{
			"tier":  tier.Name,
			"key":   key,
			"error": delErr.Error(),
		})
	}
}
