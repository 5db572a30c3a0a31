package driving

import (
	"context"
	"time"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
)

// RunOptions configures one sync run.
type RunOptions struct {
	// Lookback is how far back to fetch candidate posts.
	Lookback time.Duration

	// MaxPosts caps how many posts are processed this run.
	MaxPosts int

	// IncludeThreads includes self-reply posts.
	IncludeThreads bool

	// DryRun simulates publishing. No destination calls are made and the
	// persisted state is left untouched.
	DryRun bool
}

// RunReport summarises one sync run.
type RunReport struct {
	// Fetched is how many candidate posts the source returned.
	Fetched int

	// Skipped is how many candidates were already synced.
	Skipped int

	// Synced is how many posts were published this run.
	Synced int

	// Failed is how many attempts failed this run.
	Failed int

	// DryRun indicates publishing was simulated.
	DryRun bool

	// Records holds the attempt records produced this run, in order.
	Records []domain.SyncRecord
}

// SyncRunner drives one end-to-end sync run.
type SyncRunner interface {
	// Run executes one run: fetch, filter, transform, publish, record,
	// persist. Per-item failures are recorded and do not abort the run;
	// only store-level or source-level errors return a non-nil error.
	Run(ctx context.Context, opts RunOptions) (*RunReport, error)
}
