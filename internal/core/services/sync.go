package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driving"
	"github.com/aviary-labs/bridgefeed-cli/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncRunner = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates one cross-posting run: fetch candidates from
// the source, filter out already-synced posts, transform, publish, and
// record outcomes in the sync state.
//
// The orchestrator owns the loaded SyncState exclusively for the duration of
// a run. Cross-process exclusion is enforced by the caller (run lock).
type SyncOrchestrator struct {
	source      driven.SourceClient
	destination driven.DestinationClient
	transformer driven.Transformer
	stateStore  driven.SyncStateStore

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	source driven.SourceClient,
	destination driven.DestinationClient,
	transformer driven.Transformer,
	stateStore driven.SyncStateStore,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		source:      source,
		destination: destination,
		transformer: transformer,
		stateStore:  stateStore,
		now:         time.Now,
	}
}

// Run executes one sync run.
//
// State is persisted after every recorded item, so an interrupted run keeps
// the outcomes of everything that reached the record step. Per-item
// transform and publish failures are recorded and do not abort the run;
// only state-store and source-level errors return a non-nil error.
func (o *SyncOrchestrator) Run(ctx context.Context, opts driving.RunOptions) (*driving.RunReport, error) {
	// INIT: load persisted state.
	state, err := o.stateStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sync state: %w", err)
	}

	// FETCH: candidates for the lookback window.
	window := driven.FetchWindow{
		Lookback:       opts.Lookback,
		Limit:          0, // client default; the per-run cap is applied after filtering
		IncludeThreads: opts.IncludeThreads,
	}
	posts, err := o.source.FetchRecent(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceFetch, err)
	}

	report := &driving.RunReport{Fetched: len(posts), DryRun: opts.DryRun}

	// FILTER: drop already-synced posts, order chronologically, apply cap.
	candidates := o.filter(state, posts, report)
	if opts.MaxPosts > 0 && len(candidates) > opts.MaxPosts {
		candidates = candidates[:opts.MaxPosts]
	}

	logger.Info("Run: %d fetched, %d skipped, %d to sync", report.Fetched, report.Skipped, len(candidates))

	// Sequential, oldest-first. Concurrent publishing would break thread
	// ordering and trip destination rate limits.
	for i := range candidates {
		select {
		case <-ctx.Done():
			// PERSIST what we have before giving up.
			if persistErr := o.persist(ctx, state, opts.DryRun); persistErr != nil {
				logger.Warn("Failed to persist state on cancellation: %v", persistErr)
			}
			return report, ctx.Err()
		default:
		}
		o.syncOne(ctx, state, &candidates[i], opts, report)
	}

	// PERSIST: final write even when every item failed, so successes
	// recorded earlier survive a later crash.
	if err := o.persist(ctx, state, opts.DryRun); err != nil {
		return report, fmt.Errorf("save sync state: %w", err)
	}

	logger.Info("Run complete: %d synced, %d failed", report.Synced, report.Failed)
	return report, nil
}

// filter drops candidates already present in the synced set and sorts the
// remainder oldest-first, preserving a left-to-right completion frontier if
// the run is interrupted.
func (o *SyncOrchestrator) filter(state *domain.SyncState, posts []domain.Post, report *driving.RunReport) []domain.Post {
	candidates := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if state.IsSynced(p.ID) {
			report.Skipped++
			continue
		}
		candidates = append(candidates, p)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates
}

// syncOne handles TRANSFORM, PUBLISH and RECORD for a single candidate.
func (o *SyncOrchestrator) syncOne(
	ctx context.Context,
	state *domain.SyncState,
	post *domain.Post,
	opts driving.RunOptions,
	report *driving.RunReport,
) {
	status, err := o.transformer.Transform(*post)
	if err != nil {
		logger.Warn("Cannot transform %s: %v", post.ID, err)
		// Untransformable content will never succeed on retry. Mark it
		// synced so it does not block the chronological frontier, and
		// keep the failure in the audit log.
		o.record(ctx, state, post, "", fmt.Errorf("%w: %w", domain.ErrTransform, err), opts, report)
		if !opts.DryRun {
			state.MarkSynced(post.ID, o.now())
		}
		return
	}

	// Thread continuation: resolve the parent's destination-side ID from
	// earlier successful attempts.
	if post.IsSelfReply() {
		if parentID := state.FindTargetID(post.ReplyParentID); parentID != "" {
			logger.Info("Found destination parent %s for %s", parentID, post.ReplyParentID)
			status.InReplyToID = parentID
		} else {
			logger.Warn("Could not find destination parent for %s; posting standalone", post.ReplyParentID)
		}
	}

	if opts.DryRun {
		logger.Info("[dry-run] would publish %s (%d chars, %d media)", post.ID, len(status.Text), len(status.Media))
		report.Synced++
		return
	}

	targetID, err := o.destination.Publish(ctx, status)
	o.record(ctx, state, post, targetID, err, opts, report)
}

// record appends the attempt outcome, updates the synced set and persists
// the state. Never called for dry runs except on transform failures, where
// it only updates the in-memory report.
func (o *SyncOrchestrator) record(
	ctx context.Context,
	state *domain.SyncState,
	post *domain.Post,
	targetID string,
	publishErr error,
	opts driving.RunOptions,
	report *driving.RunReport,
) {
	now := o.now()
	rec := domain.SyncRecord{
		ID:             uuid.NewString(),
		SourceID:       post.ID,
		SourcePlatform: domain.PlatformBluesky,
		TargetID:       targetID,
		TargetPlatform: domain.PlatformMastodon,
		AttemptedAt:    now,
		Success:        publishErr == nil,
	}
	if publishErr != nil {
		rec.ErrorDetail = publishErr.Error()
		report.Failed++
	} else {
		report.Synced++
	}
	report.Records = append(report.Records, rec)

	if opts.DryRun {
		return
	}

	state.RecordAttempt(rec)

	switch {
	case publishErr == nil:
		state.MarkSynced(post.ID, now)
	case errors.Is(publishErr, domain.ErrAmbiguousPublish):
		// The request may have landed. Marking synced trades a possibly
		// lost post for never posting a duplicate.
		logger.Warn("Publish outcome unknown for %s; marking synced to prevent duplication", post.ID)
		state.MarkSynced(post.ID, now)
	default:
		logger.Warn("Failed to publish %s: %v", post.ID, publishErr)
	}

	// Persist after every recorded item so a crash loses at most the
	// in-flight attempt.
	if err := o.persist(ctx, state, false); err != nil {
		logger.Warn("Failed to save sync state: %v", err)
	}
}

// persist writes the state back unless the run is a dry run.
func (o *SyncOrchestrator) persist(ctx context.Context, state *domain.SyncState, dryRun bool) error {
	if dryRun {
		return nil
	}
	return o.stateStore.Save(ctx, state)
}
