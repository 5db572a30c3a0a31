// Package memory provides in-memory adapter implementations used by tests
// and as lightweight defaults.
package memory

import (
	"context"
	"sync"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu    sync.RWMutex
	saved *domain.SyncState

	// SaveCount tracks how many times Save was called, for tests asserting
	// incremental persistence.
	SaveCount int

	// LoadErr and SaveErr, when set, are returned by the corresponding
	// operation. Used to exercise failure paths.
	LoadErr error
	SaveErr error
}

// NewSyncStateStore creates an empty in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{}
}

// Seed replaces the stored state. Intended for test setup.
func (s *SyncStateStore) Seed(state *domain.SyncState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = cloneState(state)
}

// Load returns a copy of the stored state, or an empty state when nothing
// has been saved yet.
func (s *SyncStateStore) Load(_ context.Context) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.saved == nil {
		return domain.NewSyncState(), nil
	}
	return cloneState(s.saved), nil
}

// Save stores a copy of the state.
func (s *SyncStateStore) Save(_ context.Context, state *domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saved = cloneState(state)
	s.SaveCount++
	return nil
}

// Saved returns a copy of the last saved state, or nil if Save was never
// called.
func (s *SyncStateStore) Saved() *domain.SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.saved == nil {
		return nil
	}
	return cloneState(s.saved)
}

func cloneState(state *domain.SyncState) *domain.SyncState {
	clone := domain.NewSyncState()
	clone.SyncedPosts = append(clone.SyncedPosts, state.SyncedPosts...)
	clone.SyncRecords = append(clone.SyncRecords, state.SyncRecords...)
	clone.Reindex()
	return clone
}
