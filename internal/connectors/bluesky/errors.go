package bluesky

import (
	"fmt"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
)

// APIError represents an ATProto XRPC error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bluesky: API error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps HTTP status codes onto the domain error classification.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return domain.ErrAuthInvalid
	case e.StatusCode == 429:
		return domain.ErrRateLimited
	case e.StatusCode >= 500:
		return domain.ErrTransient
	default:
		return nil
	}
}
