package driven

import (
	"context"
	"time"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
)

// FetchWindow bounds a candidate fetch.
type FetchWindow struct {
	// Lookback is how far back from now to consider posts.
	Lookback time.Duration

	// Limit caps how many posts the client may return. Zero means the
	// client's default page size.
	Limit int

	// IncludeThreads includes self-replies (thread continuations) when set.
	IncludeThreads bool
}

// SourceClient fetches candidate posts from the source platform.
type SourceClient interface {
	// Verify checks that the configured credentials are accepted.
	// Makes a lightweight authenticated call.
	Verify(ctx context.Context) error

	// FetchRecent returns the account's posts within the window.
	// Order is unspecified; the orchestrator sorts chronologically.
	FetchRecent(ctx context.Context, window FetchWindow) ([]domain.Post, error)
}
