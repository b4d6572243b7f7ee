// ABOUTME: Time-windowed title deduplication over a batch of feed items
// ABOUTME: Pure function, no I/O; later-published items win over earlier ones

package dedup

import (
	"sort"
	"time"

	"rssfilter-api/core/domain"
)

// Dedup collapses near-duplicate items: two items with the same title
// published within windowDays of each other are the same story, and the
// later-published one is kept.
//
// Items missing a title or a parsable timestamp are never deduplicated;
// without both fields there is no unambiguous way to join them.
//
// The collapse is a greedy single pass in descending publish order, where
// each item is compared against the timestamp of the last *retained* item
// for its title, not the first one seen. Three items pairwise spaced just
// under the window can therefore all be retained when the cumulative gap
// between the first and last exceeds the window. That is the intended
// behavior, not transitive clustering.
func Dedup(items []domain.FeedItem, windowDays int) []domain.FeedItem {
	if len(items) < 2 {
		return items
	}

	window := time.Duration(windowDays) * 24 * time.Hour

	sorted := make([]domain.FeedItem, len(items))
	copy(sorted, items)

	// Newest first; items without a timestamp sort last
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.HasPublished() {
			return false
		}
		if !b.HasPublished() {
			return true
		}
		return a.Published.After(b.Published)
	})

	retained := make([]domain.FeedItem, 0, len(sorted))
	lastRetained := make(map[string]time.Time)

	for _, item := range sorted {
		if item.Title == "" || !item.HasPublished() {
			retained = append(retained, item)
			continue
		}

		prev, seen := lastRetained[item.Title]
		if !seen {
			retained = append(retained, item)
			lastRetained[item.Title] = item.Published
			continue
		}

		if gap(prev, item.Published) > window {
			// Far enough apart to be a distinct story
			retained = append(retained, item)
			lastRetained[item.Title] = item.Published
		}
	}

	return retained
}

// gap returns the absolute duration between two timestamps
func gap(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d
}
