package annotate

import (
	"context"
	"time"

	"rssfilter-api/core/interfaces"
)

// mapCache is an in-memory cache backed by a plain map, ignoring TTLs
type mapCache struct {
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (m *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, interfaces.ErrCacheMiss
}

func (m *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mapCache) Clear(ctx context.Context) error {
	m.data = make(map[string][]byte)
	return nil
}

func (m *mapCache) SweepExpired(ctx context.Context) (int, error) { return 0, nil }

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct {
	warnFunc func(msg string, fields map[string]interface{})
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	if m.warnFunc != nil {
		m.warnFunc(msg, fields)
	}
}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}

// mockGenerator is a mock implementation of the TextGenerator interface
type mockGenerator struct {
	generateFunc func(ctx context.Context, prompt, provider string) (string, error)
	calls        int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt, provider string) (string, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt, provider)
	}
	return "", nil
}
