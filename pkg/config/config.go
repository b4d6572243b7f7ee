// ABOUTME: Configuration loading from a YAML file with environment variable overrides
// ABOUTME: Defines configuration structures for the server, cache tiers, providers and groups

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Global contains settings shared by every group
	Global GlobalConfig `yaml:"global"`

	// LLM contains text-generation provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Web contains HTTP server configuration
	Web WebConfig `yaml:"web"`

	// Groups maps group names to their feed configuration
	Groups map[string]GroupConfig `yaml:"groups"`
}

// GlobalConfig holds settings shared by every group
type GlobalConfig struct {
	// DataDir is where the entry database and published feeds live
	DataDir string `yaml:"data_dir"`

	// RetentionDays is how long persisted entries are kept
	RetentionDays int `yaml:"retention_days"`

	// Cache configures the cache tiers
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig configures the cache tiers, fastest first
type CacheConfig struct {
	Memory TierConfig  `yaml:"memory"`
	SQLite TierConfig  `yaml:"sqlite"`
	Redis  RedisConfig `yaml:"redis"`
}

// TierConfig enables one cache tier and sets its default TTL
type TierConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

// RedisConfig holds the Redis tier's connection settings
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
}

// LLMConfig holds the provider registry configuration
type LLMConfig struct {
	// DefaultProvider is used when a group names no provider
	DefaultProvider string `yaml:"default_provider"`

	// RatePerMinute caps generation calls across all providers; 0 means
	// no limit
	RatePerMinute int `yaml:"rate_per_minute"`

	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds the settings for one text-generation provider
type ProviderConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	DeploymentID string `yaml:"deployment_id"`
	APIVersion   string `yaml:"api_version"`
}

// WebConfig holds HTTP server configuration
type WebConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// GroupConfig configures one feed group
type GroupConfig struct {
	// URLs are the source feeds for the group
	URLs []string `yaml:"urls"`

	// IntervalMinutes is how often the group is refreshed
	IntervalMinutes int `yaml:"interval_minutes"`

	Deduplication DedupConfig   `yaml:"deduplication"`
	Filter        FilterConfig  `yaml:"filter"`
	Summary       SummaryConfig `yaml:"summary"`
}

// DedupConfig controls title deduplication for a group
type DedupConfig struct {
	Enabled    bool `yaml:"enabled"`
	WindowDays int  `yaml:"window_days"`
}

// FilterConfig controls relevance filtering for a group
type FilterConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Prompt   string `yaml:"prompt"`
	Provider string `yaml:"provider"`
}

// SummaryConfig controls summarization for a group
type SummaryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	MaxLength int    `yaml:"max_length"`
	Provider  string `yaml:"provider"`
}

// Load reads configuration from a YAML file, fills in defaults and
// applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults returns a config with every setting at its default
func defaults() *Config {
	return &Config{
		Global: GlobalConfig{
			DataDir:       "./data",
			RetentionDays: 90,
			Cache: CacheConfig{
				Memory: TierConfig{Enabled: true, TTLSeconds: 3600},
				SQLite: TierConfig{Enabled: true, TTLSeconds: 86400},
				Redis: RedisConfig{
					Enabled:    false,
					TTLSeconds: 604800,
					Address:    "localhost:6379",
				},
			},
		},
		LLM: LLMConfig{
			DefaultProvider: "openai",
			RatePerMinute:   60,
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: "8000",
		},
	}
}

// applyEnvOverrides lets the environment override file settings
func applyEnvOverrides(cfg *Config) {
	cfg.Global.DataDir = getEnvOrDefault("DATA_DIR", cfg.Global.DataDir)
	cfg.Web.Host = getEnvOrDefault("HOST", cfg.Web.Host)
	cfg.Web.Port = getEnvOrDefault("PORT", cfg.Web.Port)

	cfg.Global.Cache.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.Global.Cache.Redis.Address)
	cfg.Global.Cache.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Global.Cache.Redis.Password)
	cfg.Global.Cache.Redis.DB = getEnvAsIntOrDefault("REDIS_DB", cfg.Global.Cache.Redis.DB)

	cfg.LLM.DefaultProvider = getEnvOrDefault("LLM_DEFAULT_PROVIDER", cfg.LLM.DefaultProvider)

	// Per-provider API keys come from the environment when unset in the
	// file, so the file can be committed without secrets
	for name, envKey := range map[string]string{
		"openai":   "OPENAI_API_KEY",
		"gemini":   "GEMINI_API_KEY",
		"claude":   "ANTHROPIC_API_KEY",
		"deepseek": "DEEPSEEK_API_KEY",
		"azure":    "AZURE_OPENAI_API_KEY",
	} {
		key := os.Getenv(envKey)
		if key == "" {
			continue
		}
		if cfg.LLM.Providers == nil {
			cfg.LLM.Providers = make(map[string]ProviderConfig)
		}
		p := cfg.LLM.Providers[name]
		if p.APIKey == "" {
			p.APIKey = key
			cfg.LLM.Providers[name] = p
		}
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Global.DataDir == "" {
		return errors.New("data dir cannot be empty")
	}
	if c.Global.RetentionDays < 1 {
		return errors.New("retention days must be at least 1")
	}
	if c.Web.Port == "" {
		return errors.New("port cannot be empty")
	}
	if !c.Global.Cache.Memory.Enabled && !c.Global.Cache.SQLite.Enabled && !c.Global.Cache.Redis.Enabled {
		return errors.New("at least one cache tier must be enabled")
	}
	if c.Global.Cache.Redis.Enabled && c.Global.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when the redis tier is enabled")
	}

	for name, group := range c.Groups {
		if len(group.URLs) == 0 {
			return fmt.Errorf("group %q has no source URLs", name)
		}
		if group.IntervalMinutes < 1 {
			return fmt.Errorf("group %q interval must be at least 1 minute", name)
		}
		if group.Deduplication.Enabled && group.Deduplication.WindowDays < 1 {
			return fmt.Errorf("group %q deduplication window must be at least 1 day", name)
		}
		if group.Filter.Enabled && group.Filter.Prompt == "" {
			return fmt.Errorf("group %q filter needs a prompt", name)
		}
	}

	return nil
}
