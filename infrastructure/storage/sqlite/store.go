// ABOUTME: SQLite-backed durable store for processed entries and per-group watermarks
// ABOUTME: Entries are keyed (entry_id, group_name); writing an existing pair is an upsert

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rssfilter-api/core/domain"
	"rssfilter-api/core/interfaces"
)

// EntryStore implements the interfaces.EntryStore contract using SQLite
type EntryStore struct {
	db       *sql.DB
	filePath string
}

// NewEntryStore opens (and if needed initializes) the entry database.
func NewEntryStore(filePath string) (*EntryStore, error) {
	if filePath == "" {
		return nil, errors.New("entry store path cannot be empty")
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to entry database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &EntryStore{db: db, filePath: filePath}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the entries and watermarks tables if they don't exist
func (s *EntryStore) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS entries (
			entry_id TEXT NOT NULL,
			group_name TEXT NOT NULL,
			title TEXT NOT NULL,
			link TEXT NOT NULL,
			published INTEGER NOT NULL,
			updated INTEGER NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			processed INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (entry_id, group_name)
		);
		CREATE INDEX IF NOT EXISTS idx_entries_group_published
			ON entries(group_name, published DESC);
		CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);

		CREATE TABLE IF NOT EXISTS watermarks (
			group_name TEXT PRIMARY KEY,
			last_update INTEGER NOT NULL
		);
	`

	_, err := s.db.Exec(query)
	return err
}

// UpsertEntry inserts or updates an entry keyed by (item.ID, item.Group)
func (s *EntryStore) UpsertEntry(ctx context.Context, item domain.FeedItem) error {
	if item.ID == "" || item.Group == "" {
		return errors.New("entry id and group cannot be empty")
	}

	content, err := json.Marshal(item.Content)
	if err != nil {
		return fmt.Errorf("failed to serialize content: %w", err)
	}

	now := time.Now().Unix()
	query := `
		INSERT INTO entries
			(entry_id, group_name, title, link, published, updated, author,
			 content, summary, processed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entry_id, group_name) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			published = excluded.published,
			updated = excluded.updated,
			author = excluded.author,
			content = excluded.content,
			summary = excluded.summary,
			processed = excluded.processed,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		item.ID, item.Group, item.Title, item.Link,
		unixOrZero(item.Published), unixOrZero(item.Updated), item.Author,
		string(content), item.Summary, boolToInt(item.Processed), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}

	return nil
}

// GetEntry returns the entry for (entryID, group), or nil if absent
func (s *EntryStore) GetEntry(ctx context.Context, entryID, group string) (*domain.FeedItem, error) {
	query := `
		SELECT entry_id, group_name, title, link, published, updated,
		       author, content, summary, processed
		FROM entries WHERE entry_id = ? AND group_name = ?
	`

	row := s.db.QueryRowContext(ctx, query, entryID, group)
	item, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return item, nil
}

// GetEntries returns entries for a group, newest first
func (s *EntryStore) GetEntries(ctx context.Context, group string, q interfaces.EntryQuery) ([]domain.FeedItem, error) {
	query := `
		SELECT entry_id, group_name, title, link, published, updated,
		       author, content, summary, processed
		FROM entries WHERE group_name = ?
	`
	args := []interface{}{group}

	if q.ProcessedOnly {
		query += " AND processed = 1"
	}
	query += " ORDER BY published DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var items []domain.FeedItem
	for rows.Next() {
		item, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// EntryCount returns the number of entries stored for a group
func (s *EntryStore) EntryCount(ctx context.Context, group string, processedOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM entries WHERE group_name = ?"
	if processedOnly {
		query += " AND processed = 1"
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, group).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Watermark returns the last successful update time for a group
func (s *EntryStore) Watermark(ctx context.Context, group string) (time.Time, bool, error) {
	var unix int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_update FROM watermarks WHERE group_name = ?", group).Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get watermark: %w", err)
	}

	return time.Unix(unix, 0), true, nil
}

// SetWatermark records the last successful update time for a group.
// The stored value is clamped monotonic: an older timestamp is ignored.
func (s *EntryStore) SetWatermark(ctx context.Context, group string, t time.Time) error {
	query := `
		INSERT INTO watermarks (group_name, last_update) VALUES (?, ?)
		ON CONFLICT(group_name) DO UPDATE SET last_update = excluded.last_update
			WHERE excluded.last_update > watermarks.last_update
	`

	_, err := s.db.ExecContext(ctx, query, group, t.Unix())
	if err != nil {
		return fmt.Errorf("failed to set watermark: %w", err)
	}
	return nil
}

// DeleteOlderThan removes entries created before now-age
func (s *EntryStore) DeleteOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age).Unix()

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old entries: %w", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Close closes the database connection
func (s *EntryStore) Close() error {
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEntry reads one entry row into a domain item
func scanEntry(row scanner) (*domain.FeedItem, error) {
	var item domain.FeedItem
	var published, updated int64
	var content string
	var processed int

	err := row.Scan(&item.ID, &item.Group, &item.Title, &item.Link,
		&published, &updated, &item.Author, &content, &item.Summary, &processed)
	if err != nil {
		return nil, err
	}

	if published > 0 {
		item.Published = time.Unix(published, 0)
	}
	if updated > 0 {
		item.Updated = time.Unix(updated, 0)
	}
	item.Processed = processed != 0

	if content != "" {
		if err := json.Unmarshal([]byte(content), &item.Content); err != nil {
			// Unreadable content is not worth failing a read over
			item.Content = domain.Content{}
		}
	}

	return &item, nil
}

// unixOrZero converts a time to unix seconds, zero time to 0
func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// boolToInt converts a bool to its SQLite integer representation
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
