package driven

import (
	"context"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
)

// SyncStateStore persists the sync state aggregate between runs.
type SyncStateStore interface {
	// Load reads the persisted state. A missing state source yields an
	// empty state, not an error. An unparseable state source yields an
	// error wrapping domain.ErrStateCorrupt and the source is left
	// untouched.
	Load(ctx context.Context) (*domain.SyncState, error)

	// Save persists the full aggregate. The write is atomic from the
	// perspective of a concurrent reader: either the old or the new
	// complete state is observed, never a partial write.
	Save(ctx context.Context, state *domain.SyncState) error
}
