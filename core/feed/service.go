// ABOUTME: Feed service handles cache-aware fetching and parsing of source feeds
// ABOUTME: Provides business logic for feed retrieval independent of the pipeline

package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"rssfilter-api/core/domain"
	"rssfilter-api/core/interfaces"
)

// fetchCacheTTL bounds how long a fetched source document is reused
// before hitting the network again.
const fetchCacheTTL = 1 * time.Hour

// FeedService fetches and parses source feeds
type FeedService struct {
	deps interfaces.Dependencies
}

// NewFeedService creates a new feed service instance
func NewFeedService(deps interfaces.Dependencies) *FeedService {
	return &FeedService{
		deps: deps,
	}
}

// FetchFeed returns the parsed feed for a source URL, serving from cache
// when a fresh copy exists and falling back to a live fetch on miss.
func (s *FeedService) FetchFeed(ctx context.Context, feedURL string) (*domain.Feed, error) {
	if feedURL == "" {
		return nil, errors.New("feed URL cannot be empty")
	}

	parsedURL, err := url.Parse(feedURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, errors.New("invalid URL format")
	}

	// Check cache first
	cached, err := s.getCachedFeed(ctx, feedURL)
	if err == nil && cached != nil {
		return cached, nil
	}

	if s.deps.HTTPClient == nil {
		return nil, errors.New("HTTP client not configured")
	}

	resp, err := s.deps.HTTPClient.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}

	bodyBytes, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, err
	}

	feed, err := s.parseFeedContent(bodyBytes, feedURL)
	if err != nil {
		return nil, err
	}

	// Cache the feed (ignore cache errors)
	_ = s.cacheFeed(ctx, feedURL, feed)

	return feed, nil
}

// parseFeedContent parses feed content from bytes
func (s *FeedService) parseFeedContent(content []byte, feedURL string) (*domain.Feed, error) {
	if len(content) == 0 {
		return nil, errors.New("empty feed content")
	}

	parser := gofeed.NewParser()
	parsedFeed, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	feed := &domain.Feed{
		Title:       parsedFeed.Title,
		Description: parsedFeed.Description,
		URL:         feedURL,
		Link:        parsedFeed.Link,
		Items:       make([]domain.FeedItem, 0, len(parsedFeed.Items)),
	}

	if parsedFeed.UpdatedParsed != nil {
		feed.LastUpdated = *parsedFeed.UpdatedParsed
	} else if parsedFeed.PublishedParsed != nil {
		feed.LastUpdated = *parsedFeed.PublishedParsed
	} else {
		feed.LastUpdated = time.Now()
	}

	for _, item := range parsedFeed.Items {
		feed.Items = append(feed.Items, convertItemToDomain(item))
	}

	return feed, nil
}

// convertItemToDomain converts a gofeed item to a domain item.
// The item body is normalized into the tagged Content variant here so
// nothing downstream needs to sniff its shape.
func convertItemToDomain(item *gofeed.Item) domain.FeedItem {
	feedItem := domain.FeedItem{
		ID:    item.GUID,
		Title: item.Title,
		Link:  item.Link,
	}

	// Use the link when the source carries no GUID; as a last resort the
	// fingerprint of (title, link) keeps the item addressable.
	if feedItem.ID == "" && item.Link != "" {
		feedItem.ID = item.Link
	}
	if feedItem.ID == "" {
		feedItem.ID = feedItem.Fingerprint()
	}

	if item.PublishedParsed != nil {
		feedItem.Published = *item.PublishedParsed
	} else if item.Published != "" {
		feedItem.Published = parseTime(item.Published)
	}

	if item.UpdatedParsed != nil {
		feedItem.Updated = *item.UpdatedParsed
	}

	if item.Author != nil && item.Author.Name != "" {
		feedItem.Author = item.Author.Name
	}

	if item.Content != "" {
		feedItem.Content = domain.HTMLContent(item.Content)
	} else if item.Description != "" {
		feedItem.Content = domain.HTMLContent(item.Description)
	}

	return feedItem
}

// parseTime attempts to parse time from various formats
func parseTime(timeStr string) time.Time {
	if timeStr == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339,
		time.RFC1123,
		time.RFC1123Z,
		time.RFC822,
		time.RFC850,
		time.ANSIC,
		"Mon, 02 Jan 2006 15:04:05 -0700",
		"2006-01-02T15:04:05Z07:00",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t
		}
	}

	return time.Time{}
}

// getCachedFeed retrieves a feed from cache
func (s *FeedService) getCachedFeed(ctx context.Context, feedURL string) (*domain.Feed, error) {
	if s.deps.Cache == nil {
		return nil, nil // No cache configured
	}

	key := fmt.Sprintf("fetch:%s", feedURL)
	data, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var feed domain.Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, err
	}

	return &feed, nil
}

// cacheFeed stores a feed in cache
func (s *FeedService) cacheFeed(ctx context.Context, feedURL string, feed *domain.Feed) error {
	if s.deps.Cache == nil {
		return nil // No cache configured
	}

	data, err := json.Marshal(feed)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("fetch:%s", feedURL)
	return s.deps.Cache.Set(ctx, key, data, fetchCacheTTL)
}
