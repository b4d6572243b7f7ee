// Package core contains the business logic for the RSS filter service.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Contains pure domain models (Feed, FeedItem, Content)
// - feed: Cache-aware fetching and parsing of source feeds
// - dedup: Time-windowed title deduplication
// - llm: Text generation against external LLM providers
// - annotate: LLM-backed content filtering and summarization
// - pipeline: Per-group ingestion run orchestration
// - publish: Rendering of the output RSS document
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (cache, HTTP, logger)
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
// - Domain models are free from persistence concerns
//
// # Usage Example
//
//	import (
//	    "rssfilter-api/core/feed"
//	    "rssfilter-api/core/interfaces"
//	)
//
//	// Create dependencies
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.Cache
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	// Create service
//	feedService := feed.NewFeedService(deps)
//
//	// Fetch a source
//	f, err := feedService.FetchFeed(ctx, "https://example.com/feed.rss")
package core
