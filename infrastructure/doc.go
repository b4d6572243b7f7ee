// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as caching, persistence, HTTP communication, and logging.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: Fast volatile tier backed by patrickmn/go-cache
// - cache/sqlite: Durable local tier backed by SQLite
// - cache/redis: Durable shared tier backed by Redis
// - cache/tiered: Read-through/write-through aggregate over the tiers
// - storage/sqlite: Durable entry and watermark store
// - http/standard: Standard library HTTP client with retry logic
// - logger/logrus: Structured logger implementation on logrus
//
// # Design Philosophy
//
// Infrastructure components are designed to be:
// - Pluggable: Easy to swap implementations
// - Configurable: Accept configuration objects
// - Testable: Include both unit and integration tests
// - Production-ready: Include retries, timeouts, and error handling
//
// # Cache Tiers
//
// Every tier implements interfaces.Cache. The tiered aggregate composes
// them in a fixed order and converges a partially failed write on the
// next successful read:
//
//	tc := tiered.New([]tiered.Tier{
//	    {Name: "memory", Cache: mem, DefaultTTL: time.Hour},
//	    {Name: "sqlite", Cache: db, DefaultTTL: 24 * time.Hour},
//	    {Name: "redis", Cache: rds, DefaultTTL: 7 * 24 * time.Hour},
//	}, logger)
//
//	err := tc.Set(ctx, "key", []byte("value"), 0) // per-tier default TTLs
//	value, err := tc.Get(ctx, "key")              // promotes on deep hits
package infrastructure
