package pipeline

import (
	"context"
	"time"

	"rssfilter-api/core/annotate"
	"rssfilter-api/core/domain"
	"rssfilter-api/core/interfaces"
)

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}

// mockSource is a mock implementation of the FeedSource interface
type mockSource struct {
	fetchFunc func(ctx context.Context, url string) (*domain.Feed, error)
}

func (m *mockSource) FetchFeed(ctx context.Context, url string) (*domain.Feed, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return &domain.Feed{}, nil
}

// mockStore is an in-memory implementation of the EntryStore interface
// with per-method failure hooks
type mockStore struct {
	entries    map[string]domain.FeedItem
	watermarks map[string]time.Time

	upsertErr    error
	watermarkErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		entries:    make(map[string]domain.FeedItem),
		watermarks: make(map[string]time.Time),
	}
}

func (m *mockStore) UpsertEntry(ctx context.Context, item domain.FeedItem) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.entries[item.ID+"|"+item.Group] = item
	return nil
}

func (m *mockStore) GetEntry(ctx context.Context, entryID, group string) (*domain.FeedItem, error) {
	if item, ok := m.entries[entryID+"|"+group]; ok {
		return &item, nil
	}
	return nil, nil
}

func (m *mockStore) GetEntries(ctx context.Context, group string, q interfaces.EntryQuery) ([]domain.FeedItem, error) {
	var items []domain.FeedItem
	for _, item := range m.entries {
		if item.Group != group {
			continue
		}
		if q.ProcessedOnly && !item.Processed {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *mockStore) EntryCount(ctx context.Context, group string, processedOnly bool) (int, error) {
	items, _ := m.GetEntries(ctx, group, interfaces.EntryQuery{ProcessedOnly: processedOnly})
	return len(items), nil
}

func (m *mockStore) Watermark(ctx context.Context, group string) (time.Time, bool, error) {
	if m.watermarkErr != nil {
		return time.Time{}, false, m.watermarkErr
	}
	t, ok := m.watermarks[group]
	return t, ok, nil
}

func (m *mockStore) SetWatermark(ctx context.Context, group string, t time.Time) error {
	if prev, ok := m.watermarks[group]; !ok || t.After(prev) {
		m.watermarks[group] = t
	}
	return nil
}

func (m *mockStore) DeleteOlderThan(ctx context.Context, age time.Duration) (int, error) {
	return 0, nil
}

// passthroughAnnotator keeps every item and marks it processed
type passthroughAnnotator struct {
	calls int
}

func (a *passthroughAnnotator) Process(ctx context.Context, group string, items []domain.FeedItem, filter annotate.FilterConfig, summary annotate.SummaryConfig) ([]domain.FeedItem, error) {
	a.calls++
	out := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		item.Processed = true
		out = append(out, item)
	}
	return out, nil
}

// funcAnnotator delegates to a function field
type funcAnnotator struct {
	fn func(ctx context.Context, group string, items []domain.FeedItem) ([]domain.FeedItem, error)
}

func (a *funcAnnotator) Process(ctx context.Context, group string, items []domain.FeedItem, filter annotate.FilterConfig, summary annotate.SummaryConfig) ([]domain.FeedItem, error) {
	return a.fn(ctx, group, items)
}

// mockPublisher records what was published
type mockPublisher struct {
	published []domain.FeedItem
	calls     int
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, items []domain.FeedItem, group string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	m.published = items
	return "/data/rss/" + group + ".xml", nil
}
