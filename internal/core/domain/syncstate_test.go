package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncState_MarkSynced(t *testing.T) {
	state := NewSyncState()
	now := time.Now()

	assert.False(t, state.IsSynced("post1"))

	state.MarkSynced("post1", now)
	assert.True(t, state.IsSynced("post1"))
	assert.Len(t, state.SyncedPosts, 1)

	// Duplicate insert is a no-op, not an error.
	state.MarkSynced("post1", now.Add(time.Hour))
	assert.Len(t, state.SyncedPosts, 1)
	assert.Equal(t, now, state.SyncedPosts[0].SyncedAt)
}

func TestSyncState_Reindex(t *testing.T) {
	state := NewSyncState()
	state.SyncedPosts = []SyncedPost{
		{SourceID: "a", SyncedAt: time.Now()},
		{SourceID: "b", SyncedAt: time.Now()},
	}

	// Direct population bypasses the index.
	assert.False(t, state.IsSynced("a"))

	state.Reindex()
	assert.True(t, state.IsSynced("a"))
	assert.True(t, state.IsSynced("b"))
	assert.False(t, state.IsSynced("c"))
}

func TestSyncState_RecordAttempt_AppendOnly(t *testing.T) {
	state := NewSyncState()
	base := time.Now()

	for i, id := range []string{"p1", "p2", "p3"} {
		state.RecordAttempt(SyncRecord{
			SourceID:    id,
			AttemptedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	assert.Len(t, state.SyncRecords, 3)
	assert.Equal(t, "p1", state.SyncRecords[0].SourceID)
	assert.Equal(t, "p3", state.SyncRecords[2].SourceID)
	assert.True(t, state.SyncRecords[0].AttemptedAt.Before(state.SyncRecords[2].AttemptedAt))
}

func TestSyncState_FindTargetID(t *testing.T) {
	state := NewSyncState()
	state.RecordAttempt(SyncRecord{SourceID: "p1", TargetID: "", Success: false})
	state.RecordAttempt(SyncRecord{SourceID: "p1", TargetID: "toot1", Success: true})
	state.RecordAttempt(SyncRecord{SourceID: "p2", TargetID: "toot2", Success: true})

	assert.Equal(t, "toot1", state.FindTargetID("p1"))
	assert.Equal(t, "toot2", state.FindTargetID("p2"))
	assert.Empty(t, state.FindTargetID("p3"))
}

func TestSyncState_FindTargetID_LatestSuccessWins(t *testing.T) {
	state := NewSyncState()
	state.RecordAttempt(SyncRecord{SourceID: "p1", TargetID: "old", Success: true})
	state.RecordAttempt(SyncRecord{SourceID: "p1", TargetID: "new", Success: true})

	assert.Equal(t, "new", state.FindTargetID("p1"))
}

func TestSyncState_LastSyncedAt(t *testing.T) {
	state := NewSyncState()
	assert.True(t, state.LastSyncedAt().IsZero())

	early := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	state.MarkSynced("p1", late)
	state.MarkSynced("p2", early)

	assert.Equal(t, late, state.LastSyncedAt())
}

func TestPost_IsSelfReply(t *testing.T) {
	assert.False(t, (&Post{}).IsSelfReply())
	assert.True(t, (&Post{ReplyParentID: "at://did:plc:x/app.bsky.feed.post/1"}).IsSelfReply())
}
