// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for services used throughout the application

package interfaces

import (
	"context"
	"time"

	"rssfilter-api/core/domain"
)

// TextGenerator produces text from a prompt using an external LLM provider.
// An empty provider name selects the configured default provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, provider string) (string, error)
}

// FeedSource fetches and parses a single feed URL into the domain model.
type FeedSource interface {
	FetchFeed(ctx context.Context, url string) (*domain.Feed, error)
}

// EntryQuery restricts GetEntries results.
type EntryQuery struct {
	// Limit caps the number of returned entries. 0 means no limit.
	Limit int

	// ProcessedOnly restricts results to entries that passed the pipeline.
	ProcessedOnly bool
}

// EntryStore is the durable record of processed items and per-group
// watermarks. Entries are keyed by (entry id, group); writing an existing
// pair is an upsert.
type EntryStore interface {
	// UpsertEntry inserts or updates an entry keyed by (item.ID, item.Group).
	UpsertEntry(ctx context.Context, item domain.FeedItem) error

	// GetEntry returns the entry for (entryID, group), or nil if absent.
	GetEntry(ctx context.Context, entryID, group string) (*domain.FeedItem, error)

	// GetEntries returns entries for a group, newest first.
	GetEntries(ctx context.Context, group string, q EntryQuery) ([]domain.FeedItem, error)

	// EntryCount returns the number of entries stored for a group.
	EntryCount(ctx context.Context, group string, processedOnly bool) (int, error)

	// Watermark returns the last successful update time for a group.
	// The bool reports whether a watermark exists.
	Watermark(ctx context.Context, group string) (time.Time, bool, error)

	// SetWatermark records the last successful update time for a group.
	// The stored value never decreases; an older timestamp is ignored.
	SetWatermark(ctx context.Context, group string, t time.Time) error

	// DeleteOlderThan removes entries created before now-age and returns
	// how many were removed.
	DeleteOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// Publisher renders a set of items into the output syndication document
// for a group and returns the path it was written to.
type Publisher interface {
	Publish(ctx context.Context, items []domain.FeedItem, group string) (string, error)
}
