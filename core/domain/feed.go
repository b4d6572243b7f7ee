// ABOUTME: Feed domain model represents one fetched source feed with its items
// ABOUTME: Provides validation logic to ensure feed data integrity

package domain

import (
	"errors"
	"net/url"
	"time"
)

// Feed represents one parsed source feed.
type Feed struct {
	// Title is the human-readable title of the feed
	Title string

	// Description provides a brief description of the feed's content
	Description string

	// URL is the feed's source URL (the actual RSS/Atom URL)
	URL string

	// Link is the website URL associated with the feed
	Link string

	// Items contains the feed entries
	Items []FeedItem

	// LastUpdated indicates when the feed was last refreshed
	LastUpdated time.Time
}

// Validate checks if the feed has valid required fields
func (f *Feed) Validate() error {
	if f.URL == "" {
		return errors.New("feed URL cannot be empty")
	}

	if _, err := url.Parse(f.URL); err != nil {
		return errors.New("feed URL is not valid format")
	}

	return nil
}
