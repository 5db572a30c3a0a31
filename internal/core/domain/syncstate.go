package domain

import "time"

// SyncedPost records that a source post has been published downstream and
// must never be attempted again.
type SyncedPost struct {
	// SourceID is the unique identifier of the source post.
	SourceID string

	// SyncedAt is when the post was durably marked as synced.
	SyncedAt time.Time
}

// SyncRecord is one entry in the append-only attempt audit log.
// Records are never mutated after creation.
type SyncRecord struct {
	// ID uniquely identifies the attempt.
	ID string

	// SourceID is the source post the attempt was for.
	SourceID string

	// SourcePlatform identifies where the post came from.
	SourcePlatform string

	// TargetID is the destination-side ID on success, empty on failure.
	TargetID string

	// TargetPlatform identifies where the post was published.
	TargetPlatform string

	// AttemptedAt is when the attempt was made.
	AttemptedAt time.Time

	// Success indicates whether the publish succeeded.
	Success bool

	// ErrorDetail holds the failure description when Success is false.
	ErrorDetail string
}

// SyncState is the aggregate persisted between runs: the set of already
// synced posts plus the attempt log. It is exclusively owned by a single
// run; the store loads it at start and persists it whole.
type SyncState struct {
	SyncedPosts []SyncedPost
	SyncRecords []SyncRecord

	// index provides O(1) membership checks over SyncedPosts. Rebuilt on
	// load, maintained by MarkSynced.
	index map[string]struct{}
}

// NewSyncState returns an empty sync state.
func NewSyncState() *SyncState {
	return &SyncState{index: make(map[string]struct{})}
}

// Reindex rebuilds the membership index from SyncedPosts.
// Must be called after populating SyncedPosts directly (e.g. after load).
func (s *SyncState) Reindex() {
	s.index = make(map[string]struct{}, len(s.SyncedPosts))
	for _, p := range s.SyncedPosts {
		s.index[p.SourceID] = struct{}{}
	}
}

// IsSynced reports whether the source post has already been synced.
func (s *SyncState) IsSynced(sourceID string) bool {
	_, ok := s.index[sourceID]
	return ok
}

// MarkSynced records a source post as synced. Inserting an ID that is
// already present is a no-op, not an error.
func (s *SyncState) MarkSynced(sourceID string, syncedAt time.Time) {
	if s.IsSynced(sourceID) {
		return
	}
	s.SyncedPosts = append(s.SyncedPosts, SyncedPost{SourceID: sourceID, SyncedAt: syncedAt})
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[sourceID] = struct{}{}
}

// RecordAttempt appends an attempt record to the audit log.
func (s *SyncState) RecordAttempt(record SyncRecord) {
	s.SyncRecords = append(s.SyncRecords, record)
}

// FindTargetID returns the destination-side ID a source post was published
// as, or empty if no successful attempt for that post is recorded. Used to
// continue self-threads on the destination platform.
func (s *SyncState) FindTargetID(sourceID string) string {
	// Scan newest-first so a later successful retry wins.
	for i := len(s.SyncRecords) - 1; i >= 0; i-- {
		r := s.SyncRecords[i]
		if r.SourceID == sourceID && r.Success && r.TargetID != "" {
			return r.TargetID
		}
	}
	return ""
}

// LastSyncedAt returns the timestamp of the most recent synced post, or the
// zero time when nothing has been synced yet.
func (s *SyncState) LastSyncedAt() time.Time {
	var last time.Time
	for _, p := range s.SyncedPosts {
		if p.SyncedAt.After(last) {
			last = p.SyncedAt
		}
	}
	return last
}
