package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
global:
  data_dir: /var/lib/rssfilter
  retention_days: 30
  cache:
    memory:
      enabled: true
      ttl_seconds: 1800
    sqlite:
      enabled: true
      ttl_seconds: 43200
    redis:
      enabled: true
      ttl_seconds: 302400
      address: redis:6379
      db: 2

llm:
  default_provider: claude
  rate_per_minute: 30
  providers:
    claude:
      api_key: sk-ant-test
      model: claude-3-5-haiku-latest
    ollama:
      base_url: http://ollama:11434/api
      model: llama3

web:
  host: 127.0.0.1
  port: "9000"

groups:
  news:
    urls:
      - https://example.com/feed.xml
      - https://other.example/rss
    interval_minutes: 30
    deduplication:
      enabled: true
      window_days: 3
    filter:
      enabled: true
      prompt: articles about databases
      provider: claude
    summary:
      enabled: true
      max_length: 120
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.Global.DataDir)
	assert.Equal(t, 90, cfg.Global.RetentionDays)
	assert.True(t, cfg.Global.Cache.Memory.Enabled)
	assert.Equal(t, 3600, cfg.Global.Cache.Memory.TTLSeconds)
	assert.True(t, cfg.Global.Cache.SQLite.Enabled)
	assert.Equal(t, 86400, cfg.Global.Cache.SQLite.TTLSeconds)
	assert.False(t, cfg.Global.Cache.Redis.Enabled)
	assert.Equal(t, 604800, cfg.Global.Cache.Redis.TTLSeconds)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.Equal(t, "8000", cfg.Web.Port)
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/rssfilter", cfg.Global.DataDir)
	assert.Equal(t, 30, cfg.Global.RetentionDays)
	assert.Equal(t, 1800, cfg.Global.Cache.Memory.TTLSeconds)
	assert.True(t, cfg.Global.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Global.Cache.Redis.Address)
	assert.Equal(t, 2, cfg.Global.Cache.Redis.DB)

	assert.Equal(t, "claude", cfg.LLM.DefaultProvider)
	assert.Equal(t, 30, cfg.LLM.RatePerMinute)
	assert.Equal(t, "sk-ant-test", cfg.LLM.Providers["claude"].APIKey)
	assert.Equal(t, "http://ollama:11434/api", cfg.LLM.Providers["ollama"].BaseURL)

	assert.Equal(t, "9000", cfg.Web.Port)

	require.Contains(t, cfg.Groups, "news")
	group := cfg.Groups["news"]
	assert.Len(t, group.URLs, 2)
	assert.Equal(t, 30, group.IntervalMinutes)
	assert.True(t, group.Deduplication.Enabled)
	assert.Equal(t, 3, group.Deduplication.WindowDays)
	assert.Equal(t, "articles about databases", group.Filter.Prompt)
	assert.Equal(t, 120, group.Summary.MaxLength)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "groups: ["))

	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("REDIS_ADDRESS", "elsewhere:6379")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(writeConfig(t, sampleConfig))

	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Web.Port)
	assert.Equal(t, "elsewhere:6379", cfg.Global.Cache.Redis.Address)
	assert.Equal(t, "sk-from-env", cfg.LLM.Providers["openai"].APIKey)
}

func TestLoad_EnvDoesNotOverrideFileAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env")

	cfg, err := Load(writeConfig(t, sampleConfig))

	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test", cfg.LLM.Providers["claude"].APIKey,
		"a key set in the file wins over the environment")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.Global.DataDir = "" }},
		{"zero retention", func(c *Config) { c.Global.RetentionDays = 0 }},
		{"empty port", func(c *Config) { c.Web.Port = "" }},
		{"no cache tiers", func(c *Config) {
			c.Global.Cache.Memory.Enabled = false
			c.Global.Cache.SQLite.Enabled = false
			c.Global.Cache.Redis.Enabled = false
		}},
		{"redis without address", func(c *Config) {
			c.Global.Cache.Redis.Enabled = true
			c.Global.Cache.Redis.Address = ""
		}},
		{"group without urls", func(c *Config) {
			c.Groups = map[string]GroupConfig{"bad": {IntervalMinutes: 5}}
		}},
		{"group with zero interval", func(c *Config) {
			c.Groups = map[string]GroupConfig{"bad": {URLs: []string{"https://a.example/feed"}}}
		}},
		{"dedup without window", func(c *Config) {
			c.Groups = map[string]GroupConfig{"bad": {
				URLs:            []string{"https://a.example/feed"},
				IntervalMinutes: 5,
				Deduplication:   DedupConfig{Enabled: true},
			}}
		}},
		{"filter without prompt", func(c *Config) {
			c.Groups = map[string]GroupConfig{"bad": {
				URLs:            []string{"https://a.example/feed"},
				IntervalMinutes: 5,
				Filter:          FilterConfig{Enabled: true},
			}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
