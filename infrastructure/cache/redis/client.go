// ABOUTME: Redis-backed durable shared cache tier using go-redis
// ABOUTME: Relies on Redis native per-key TTL and atomic per-key operations

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"rssfilter-api/core/interfaces"
)

// Config holds Redis connection settings for the shared tier
type Config struct {
	Address  string
	Password string
	DB       int
}

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisCache creates a new Redis cache tier. Entries without an
// explicit TTL live for defaultTTL.
func NewRedisCache(cfg Config, defaultTTL time.Duration) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client:     client,
		defaultTTL: defaultTTL,
	}, nil
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, err
	}

	return val, nil
}

// Set stores a value in Redis with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	// Deleting a non-existent key is not an error for our use case
	return c.client.Del(ctx, key).Err()
}

// Clear removes all keys in the configured database
func (c *RedisCache) Clear(ctx context.Context) error {
	return c.client.FlushDB(ctx).Err()
}

// SweepExpired is a no-op; Redis evicts expired keys itself
func (c *RedisCache) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
