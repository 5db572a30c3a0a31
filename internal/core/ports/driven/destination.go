package driven

import (
	"context"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
)

// DestinationClient publishes transformed statuses to the destination
// platform.
type DestinationClient interface {
	// Verify checks that the configured credentials are accepted.
	Verify(ctx context.Context) error

	// Publish posts the status and returns its destination-side ID.
	// Failures are classified via the domain publish error sentinels
	// (domain.ErrAuthInvalid, domain.ErrRateLimited, domain.ErrValidation,
	// domain.ErrTransient, domain.ErrAmbiguousPublish).
	Publish(ctx context.Context, status domain.Status) (string, error)
}
