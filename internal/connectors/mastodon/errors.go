package mastodon

import (
	"fmt"
	"time"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
)

// APIError represents a Mastodon API error response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mastodon: API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps HTTP status codes onto the domain error classification.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return domain.ErrAuthInvalid
	case e.StatusCode == 422:
		return domain.ErrValidation
	case e.StatusCode == 429:
		return domain.ErrRateLimited
	case e.StatusCode >= 500:
		return domain.ErrTransient
	default:
		return nil
	}
}

// RateLimitError carries the reset hint from a 429 response.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("mastodon: rate limited, retry after %s", e.RetryAfter)
}

// Unwrap classifies rate limiting as retryable.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}
