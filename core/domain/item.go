// ABOUTME: FeedItem domain model represents an individual entry within a feed group
// ABOUTME: Carries the fingerprint used to key per-item annotation cache entries

package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// FeedItem represents an individual item/entry flowing through the pipeline.
// The (ID, Group) pair is unique within the entry store; re-ingesting the
// same pair updates the stored entry rather than duplicating it.
type FeedItem struct {
	// ID is the unique identifier for the item within its group
	ID string

	// Group is the feed group the item was ingested for
	Group string

	// Title is the item's headline
	Title string

	// Link is the URL to the full article
	Link string

	// Published is when the item was published. The zero value means the
	// source carried no parsable timestamp.
	Published time.Time

	// Updated is when the item was last updated at the source, if known
	Updated time.Time

	// Author is the creator of the item
	Author string

	// Content is the normalized item body
	Content Content

	// Summary is the generated summary, empty when none was produced
	Summary string

	// Processed reports whether the item passed the annotation stage
	Processed bool
}

// HasPublished reports whether the item carries a parsable publish time.
func (fi *FeedItem) HasPublished() bool {
	return !fi.Published.IsZero()
}

// IsValid checks if the feed item has all required fields
func (fi *FeedItem) IsValid() bool {
	if fi.ID == "" {
		return false
	}

	if fi.Title == "" && fi.Link == "" {
		return false
	}

	return true
}

// Fingerprint returns a stable hash of (title, link), used to key
// per-item filter and summary cache entries.
func (fi *FeedItem) Fingerprint() string {
	sum := md5.Sum([]byte(fi.Title + fi.Link))
	return hex.EncodeToString(sum[:])
}
