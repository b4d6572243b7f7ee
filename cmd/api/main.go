// ABOUTME: Main entry point for the RSS filter server
// ABOUTME: Wires together all components and starts the scheduler and HTTP server

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"rssfilter-api/api"
	"rssfilter-api/core/annotate"
	"rssfilter-api/core/feed"
	"rssfilter-api/core/interfaces"
	"rssfilter-api/core/llm"
	"rssfilter-api/core/pipeline"
	"rssfilter-api/core/publish"
	"rssfilter-api/infrastructure/cache/memory"
	rediscache "rssfilter-api/infrastructure/cache/redis"
	sqlitecache "rssfilter-api/infrastructure/cache/sqlite"
	"rssfilter-api/infrastructure/cache/tiered"
	stdhttp "rssfilter-api/infrastructure/http/standard"
	logruslogger "rssfilter-api/infrastructure/logger/logrus"
	"rssfilter-api/infrastructure/storage/sqlite"
	"rssfilter-api/pkg/config"
	"rssfilter-api/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logruslogger.New(*logLevel)
	logger.Info("Starting RSS filter server", map[string]interface{}{
		"data_dir": cfg.Global.DataDir,
		"groups":   len(cfg.Groups),
		"port":     cfg.Web.Port,
	})

	if err := os.MkdirAll(cfg.Global.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cache, closers, err := buildCache(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	store, err := sqlite.NewEntryStore(filepath.Join(cfg.Global.DataDir, "entries.db"))
	if err != nil {
		log.Fatalf("Failed to open entry store: %v", err)
	}
	defer store.Close()

	httpClient := stdhttp.NewStandardHTTPClient(30 * time.Second)
	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	generator := buildGenerator(cfg, deps)
	feedService := feed.NewFeedService(deps)
	annotator := annotate.NewAnnotator(deps, generator)
	publisher := publish.NewFeedPublisher(cfg.Global.DataDir, "http://"+cfg.Web.Host+":"+cfg.Web.Port, logger)
	pipe := pipeline.New(deps, feedService, store, annotator, publisher)

	sched := scheduler.New(logger)
	groupNames := make([]string, 0, len(cfg.Groups))
	for name, group := range cfg.Groups {
		groupNames = append(groupNames, name)

		groupCfg := pipeline.GroupConfig{
			Name: name,
			URLs: group.URLs,
			Dedup: pipeline.DedupConfig{
				Enabled:    group.Deduplication.Enabled,
				WindowDays: group.Deduplication.WindowDays,
			},
			Filter: annotate.FilterConfig{
				Enabled:  group.Filter.Enabled,
				Prompt:   group.Filter.Prompt,
				Provider: group.Filter.Provider,
			},
			Summary: annotate.SummaryConfig{
				Enabled:   group.Summary.Enabled,
				MaxLength: group.Summary.MaxLength,
				Provider:  group.Summary.Provider,
			},
		}

		sched.Add(name, time.Duration(group.IntervalMinutes)*time.Minute, func(ctx context.Context) {
			pipe.Run(ctx, groupCfg)
		})
	}

	// Daily maintenance: drop entries past retention and sweep expired
	// cache rows
	retention := time.Duration(cfg.Global.RetentionDays) * 24 * time.Hour
	sched.Add("maintenance", 24*time.Hour, func(ctx context.Context) {
		if n, err := store.DeleteOlderThan(ctx, retention); err != nil {
			logger.Error("retention sweep failed", map[string]interface{}{"error": err.Error()})
		} else if n > 0 {
			logger.Info("retention sweep removed entries", map[string]interface{}{"count": n})
		}
		if n, err := cache.SweepExpired(ctx); err != nil {
			logger.Warn("cache sweep failed", map[string]interface{}{"error": err.Error()})
		} else if n > 0 {
			logger.Debug("cache sweep purged entries", map[string]interface{}{"count": n})
		}
	})

	sched.Start()
	defer sched.Stop()

	server := api.NewServer(api.Config{Host: cfg.Web.Host, Port: cfg.Web.Port},
		logger, store, publisher, sched, groupNames)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// buildCache assembles the enabled cache tiers, fastest first.
func buildCache(cfg *config.Config, logger interfaces.Logger) (*tiered.TieredCache, []func() error, error) {
	var tiers []tiered.Tier
	var closers []func() error

	if cfg.Global.Cache.Memory.Enabled {
		ttl := time.Duration(cfg.Global.Cache.Memory.TTLSeconds) * time.Second
		tiers = append(tiers, tiered.Tier{
			Name:       "memory",
			Cache:      memory.NewMemoryCache(ttl, 10*time.Minute),
			DefaultTTL: ttl,
		})
	}

	if cfg.Global.Cache.SQLite.Enabled {
		ttl := time.Duration(cfg.Global.Cache.SQLite.TTLSeconds) * time.Second
		client, err := sqlitecache.NewSQLiteCache(filepath.Join(cfg.Global.DataDir, "cache.db"), ttl)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, client.Close)
		tiers = append(tiers, tiered.Tier{Name: "sqlite", Cache: client, DefaultTTL: ttl})
	}

	if cfg.Global.Cache.Redis.Enabled {
		ttl := time.Duration(cfg.Global.Cache.Redis.TTLSeconds) * time.Second
		client, err := rediscache.NewRedisCache(rediscache.Config{
			Address:  cfg.Global.Cache.Redis.Address,
			Password: cfg.Global.Cache.Redis.Password,
			DB:       cfg.Global.Cache.Redis.DB,
		}, ttl)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, client.Close)
		tiers = append(tiers, tiered.Tier{Name: "redis", Cache: client, DefaultTTL: ttl})
	}

	return tiered.New(tiers, logger), closers, nil
}

// buildGenerator registers every configured provider with the
// text-generation service.
func buildGenerator(cfg *config.Config, deps interfaces.Dependencies) *llm.Service {
	var limiter *rate.Limiter
	if cfg.LLM.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.LLM.RatePerMinute)/60.0), 1)
	}

	svc := llm.NewService(deps, cfg.LLM.DefaultProvider, limiter)

	providerCfg := func(name string) llm.ProviderConfig {
		p := cfg.LLM.Providers[name]
		return llm.ProviderConfig{
			APIKey:       p.APIKey,
			BaseURL:      p.BaseURL,
			Model:        p.Model,
			DeploymentID: p.DeploymentID,
			APIVersion:   p.APIVersion,
		}
	}

	svc.Register(llm.NewOpenAI(providerCfg("openai"), deps.HTTPClient))
	svc.Register(llm.NewGemini(providerCfg("gemini"), deps.HTTPClient))
	svc.Register(llm.NewClaude(providerCfg("claude"), deps.HTTPClient))
	svc.Register(llm.NewOllama(providerCfg("ollama"), deps.HTTPClient))
	svc.Register(llm.NewDeepSeek(providerCfg("deepseek"), deps.HTTPClient))
	svc.Register(llm.NewAzure(providerCfg("azure"), deps.HTTPClient))

	return svc
}
