// ABOUTME: Renders processed items for a group into an RSS 2.0 document on disk
// ABOUTME: The output file is what the HTTP layer serves to subscribers

package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"

	"rssfilter-api/core/domain"
	coreerrors "rssfilter-api/core/errors"
	"rssfilter-api/core/interfaces"
)

// FeedPublisher writes the filtered feed for a group as RSS 2.0 under
// <dataDir>/rss/<group>.xml.
type FeedPublisher struct {
	dataDir string
	baseURL string
	logger  interfaces.Logger
}

// NewFeedPublisher creates a publisher rooted at dataDir. baseURL is
// used as the channel link prefix for published feeds.
func NewFeedPublisher(dataDir, baseURL string, logger interfaces.Logger) *FeedPublisher {
	return &FeedPublisher{
		dataDir: dataDir,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Publish renders the items as an RSS document and writes it to the
// group's output path, which is returned. The write replaces any
// previous document atomically via a temp file rename.
func (p *FeedPublisher) Publish(ctx context.Context, items []domain.FeedItem, group string) (string, error) {
	if group == "" {
		return "", &coreerrors.PublishError{Group: group, Err: errors.New("group name cannot be empty")}
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s (filtered)", group),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss/%s", p.baseURL, group)},
		Description: fmt.Sprintf("Filtered feed for group %s", group),
		Created:     time.Now(),
		Id:          fmt.Sprintf("urn:rssfilter:%s:%s", group, uuid.NewString()),
	}

	for _, item := range items {
		entry := &feeds.Item{
			Id:      item.ID,
			Title:   item.Title,
			Link:    &feeds.Link{Href: item.Link},
			Author:  &feeds.Author{Name: item.Author},
			Created: item.Published,
			Updated: item.Updated,
		}

		if item.Summary != "" {
			entry.Description = item.Summary
		} else {
			entry.Description = item.Content.PlainText()
		}
		if item.Content.Kind == domain.ContentHTML {
			entry.Content = item.Content.Value
		}

		feed.Items = append(feed.Items, entry)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", &coreerrors.PublishError{Group: group, Err: fmt.Errorf("failed to render feed: %w", err)}
	}

	outDir := filepath.Join(p.dataDir, "rss")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &coreerrors.PublishError{Group: group, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	outPath := filepath.Join(outDir, group+".xml")
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(rss), 0o644); err != nil {
		return "", &coreerrors.PublishError{Group: group, Err: fmt.Errorf("failed to write feed: %w", err)}
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return "", &coreerrors.PublishError{Group: group, Err: fmt.Errorf("failed to replace feed: %w", err)}
	}

	p.logger.Info("published feed", map[string]interface{}{
		"group": group,
		"path":  outPath,
		"items": len(items),
	})

	return outPath, nil
}

// OutputPath returns where the published document for a group lives,
// whether or not it exists yet.
func (p *FeedPublisher) OutputPath(group string) string {
	return filepath.Join(p.dataDir, "rss", group+".xml")
}
