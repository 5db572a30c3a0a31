package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
)

func TestLoad_EmptyStoreReturnsFreshState(t *testing.T) {
	store := NewSyncStateStore()

	state, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, state.SyncedPosts)
	assert.Empty(t, state.SyncRecords)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := NewSyncStateStore()
	state := domain.NewSyncState()
	state.MarkSynced("p1", time.Now())
	state.RecordAttempt(domain.SyncRecord{SourceID: "p1", Success: true})

	require.NoError(t, store.Save(context.Background(), state))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.IsSynced("p1"))
	assert.Len(t, loaded.SyncRecords, 1)
	assert.Equal(t, 1, store.SaveCount)
}

func TestLoad_ReturnsIsolatedCopy(t *testing.T) {
	store := NewSyncStateStore()
	seeded := domain.NewSyncState()
	seeded.MarkSynced("p1", time.Now())
	store.Seed(seeded)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	loaded.MarkSynced("p2", time.Now())

	// Mutating the loaded copy must not leak into the store.
	again, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, again.IsSynced("p2"))
}

func TestErrorInjection(t *testing.T) {
	store := NewSyncStateStore()
	store.LoadErr = errors.New("load boom")
	store.SaveErr = errors.New("save boom")

	_, err := store.Load(context.Background())
	assert.ErrorContains(t, err, "load boom")

	err = store.Save(context.Background(), domain.NewSyncState())
	assert.ErrorContains(t, err, "save boom")
	assert.Equal(t, 0, store.SaveCount)
}
