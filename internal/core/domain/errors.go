package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrStateCorrupt indicates the persisted sync state exists but cannot
	// be parsed. Fatal for the run; the corrupt file must not be
	// overwritten until a human inspects it.
	ErrStateCorrupt = errors.New("sync state corrupt")

	// ErrSourceFetch indicates the source platform could not be reached or
	// refused the fetch. Fatal for the run; no items are processed.
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrTransform indicates a post's content cannot be mapped to the
	// destination format. Per-item; recorded as a failed attempt.
	ErrTransform = errors.New("transform failed")

	// ErrRunActive indicates another run already holds the run lock.
	ErrRunActive = errors.New("another run is active")

	// Publish error classification.

	// ErrAuthInvalid indicates the platform rejected the configured
	// credentials. Not retryable.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates the destination rejected the status content.
	// Not retryable.
	ErrValidation = errors.New("status rejected")

	// ErrTransient indicates a temporary network or server failure.
	// Retryable with backoff.
	ErrTransient = errors.New("transient failure")

	// ErrAmbiguousPublish indicates the publish request may have reached
	// the destination before the connection failed. The post is marked
	// synced to avoid a duplicate on retry.
	ErrAmbiguousPublish = errors.New("publish outcome unknown")
)

// IsRetryable reports whether a publish error is worth retrying within the
// same attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}
