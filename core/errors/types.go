// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors so callers can tell recoverable failures from run-fatal ones

package errors

import (
	"errors"
	"fmt"
)

// TierStorageError is a per-key failure inside a single cache tier.
// It is recovered at the tier boundary (treated as a miss) and never
// escalates to the caller of the tiered cache.
type TierStorageError struct {
	Tier string
	Key  string
	Err  error
}

// Error implements the error interface
func (e *TierStorageError) Error() string {
	return fmt.Sprintf("cache tier %s failed on key %s: %v", e.Tier, e.Key, e.Err)
}

// Unwrap returns the underlying storage error
func (e *TierStorageError) Unwrap() error {
	return e.Err
}

// SourceFetchError is a per-source fetch failure. A run fails on it only
// when every source of the group failed.
type SourceFetchError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("failed to fetch source %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying fetch error
func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// ProviderError is a failure of an external text-generation call.
// Per-item consumers degrade to a safe default instead of aborting.
type ProviderError struct {
	Provider   string
	StatusCode int
	Reason     string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s returned %d: %s", e.Provider, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("provider %s failed: %s", e.Provider, e.Reason)
}

// PersistenceError is fatal for the current run. The watermark is not
// advanced and the next scheduled invocation retries the same window.
type PersistenceError struct {
	Group string
	Err   error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist entries for group %s: %v", e.Group, e.Err)
}

// Unwrap returns the underlying storage error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PublishError is fatal for the current run only; entries persisted before
// the failure are retained for the next publish attempt.
type PublishError struct {
	Group string
	Err   error
}

// Error implements the error interface
func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish feed for group %s: %v", e.Group, e.Err)
}

// Unwrap returns the underlying render error
func (e *PublishError) Unwrap() error {
	return e.Err
}

// IsSourceFetch checks if an error is a SourceFetchError
func IsSourceFetch(err error) bool {
	var sfe *SourceFetchError
	return errors.As(err, &sfe)
}

// IsProvider checks if an error is a ProviderError
func IsProvider(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsPersistence checks if an error is a PersistenceError
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsPublish checks if an error is a PublishError
func IsPublish(err error) bool {
	var pe *PublishError
	return errors.As(err, &pe)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
