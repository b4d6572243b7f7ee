// ABOUTME: SQLite-based durable local cache tier
// ABOUTME: Freshness is judged from the persisted creation timestamp plus the entry's TTL

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rssfilter-api/core/interfaces"
)

// Client implements the Cache interface using SQLite
type Client struct {
	db         *sql.DB
	filePath   string
	defaultTTL time.Duration
}

// NewSQLiteCache creates a new SQLite cache tier at filePath. Entries
// without an explicit TTL live for defaultTTL after creation.
func NewSQLiteCache(filePath string, defaultTTL time.Duration) (*Client, error) {
	if filePath == "" {
		filePath = "cache.db"
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// WAL mode avoids writer starvation under concurrent group runs
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	client := &Client{
		db:         db,
		filePath:   filePath,
		defaultTTL: defaultTTL,
	}

	if err := client.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return client, nil
}

// initSchema creates the cache table if it doesn't exist
func (c *Client) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			ttl_seconds INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cache_created ON cache(created_at);
	`

	_, err := c.db.Exec(query)
	return err
}

// Get retrieves a value from the cache
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	var value []byte
	var createdAt, ttlSeconds int64

	query := "SELECT value, created_at, ttl_seconds FROM cache WHERE key = ?"
	err := c.db.QueryRowContext(ctx, query, key).Scan(&value, &createdAt, &ttlSeconds)

	if err == sql.ErrNoRows {
		return nil, interfaces.ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}

	if time.Now().Unix() >= createdAt+ttlSeconds {
		_ = c.Delete(ctx, key)
		return nil, interfaces.ErrCacheMiss
	}

	return value, nil
}

// Set stores a value in the cache with TTL
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	query := `
		INSERT OR REPLACE INTO cache (key, value, created_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(ctx, query, key, value, time.Now().Unix(), int64(ttl.Seconds()))
	if err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}

	return nil
}

// Delete removes a value from the cache
func (c *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	query := "DELETE FROM cache WHERE key = ?"
	_, err := c.db.ExecContext(ctx, query, key)

	if err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}

	return nil
}

// Clear removes all values from the cache
func (c *Client) Clear(ctx context.Context) error {
	query := "DELETE FROM cache"
	_, err := c.db.ExecContext(ctx, query)

	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return nil
}

// SweepExpired removes expired entries and returns how many were purged
func (c *Client) SweepExpired(ctx context.Context) (int, error) {
	query := "DELETE FROM cache WHERE created_at + ttl_seconds <= ?"
	res, err := c.db.ExecContext(ctx, query, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired entries: %w", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}
