package statefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
	"github.com/aviary-labs/bridgefeed-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SyncStateStore = (*Store)(nil)

// Store persists sync state to a JSON file.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
// The file does not need to exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// syncedPostJSON is the persisted form of a synced post entry.
type syncedPostJSON struct {
	SourceID string    `json:"source_id"`
	SyncedAt time.Time `json:"synced_at"`
}

// syncRecordJSON is the persisted form of an attempt record.
type syncRecordJSON struct {
	ID             string    `json:"id,omitempty"`
	SourceID       string    `json:"source_id"`
	SourcePlatform string    `json:"source_platform"`
	TargetID       string    `json:"target_id,omitempty"`
	TargetPlatform string    `json:"target_platform"`
	AttemptedAt    time.Time `json:"attempted_at"`
	Success        bool      `json:"success"`
	ErrorDetail    string    `json:"error_detail,omitempty"`
}

// stateJSON is the persisted aggregate.
type stateJSON struct {
	SyncedPosts []syncedPostJSON `json:"synced_posts"`
	SyncRecords []syncRecordJSON `json:"sync_records"`
}

// Load reads the persisted state.
//
// A missing file yields an empty state. A file that is not valid JSON yields
// domain.ErrStateCorrupt and the file is left untouched for inspection.
// Individual records missing their source ID are skipped with a warning
// rather than failing the whole load.
func (s *Store) Load(_ context.Context) (*domain.SyncState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		logger.Debug("No state file at %s; starting with empty state", s.path)
		return domain.NewSyncState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrStateCorrupt, s.path, err)
	}

	state := domain.NewSyncState()
	for _, p := range raw.SyncedPosts {
		if p.SourceID == "" {
			logger.Warn("Could not parse synced post entry in %s; skipping", s.path)
			continue
		}
		state.SyncedPosts = append(state.SyncedPosts, domain.SyncedPost{
			SourceID: p.SourceID,
			SyncedAt: p.SyncedAt,
		})
	}
	for _, r := range raw.SyncRecords {
		if r.SourceID == "" {
			logger.Warn("Could not parse sync record in %s; skipping", s.path)
			continue
		}
		state.SyncRecords = append(state.SyncRecords, domain.SyncRecord{
			ID:             r.ID,
			SourceID:       r.SourceID,
			SourcePlatform: r.SourcePlatform,
			TargetID:       r.TargetID,
			TargetPlatform: r.TargetPlatform,
			AttemptedAt:    r.AttemptedAt,
			Success:        r.Success,
			ErrorDetail:    r.ErrorDetail,
		})
	}
	state.Reindex()

	logger.Debug("Loaded state: %d synced posts, %d records", len(state.SyncedPosts), len(state.SyncRecords))
	return state, nil
}

// Save serialises the full aggregate and atomically replaces the state file.
func (s *Store) Save(_ context.Context, state *domain.SyncState) error {
	raw := stateJSON{
		SyncedPosts: make([]syncedPostJSON, 0, len(state.SyncedPosts)),
		SyncRecords: make([]syncRecordJSON, 0, len(state.SyncRecords)),
	}
	for _, p := range state.SyncedPosts {
		raw.SyncedPosts = append(raw.SyncedPosts, syncedPostJSON{
			SourceID: p.SourceID,
			SyncedAt: p.SyncedAt,
		})
	}
	for _, r := range state.SyncRecords {
		raw.SyncRecords = append(raw.SyncRecords, syncRecordJSON{
			ID:             r.ID,
			SourceID:       r.SourceID,
			SourcePlatform: r.SourcePlatform,
			TargetID:       r.TargetID,
			TargetPlatform: r.TargetPlatform,
			AttemptedAt:    r.AttemptedAt,
			Success:        r.Success,
			ErrorDetail:    r.ErrorDetail,
		})
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	// Write-to-temp-then-rename keeps the replacement atomic for readers.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after successful rename.

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	logger.Debug("Saved state: %d synced posts, %d records", len(state.SyncedPosts), len(state.SyncRecords))
	return nil
}
