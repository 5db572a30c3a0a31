package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aviary-labs/bridgefeed-cli/internal/adapters/driven/config"
	"github.com/aviary-labs/bridgefeed-cli/internal/adapters/driven/statefile"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driving"
)

var (
	syncDryRun   bool
	syncState    string
	syncLookback time.Duration
	syncMaxPosts int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one cross-posting pass",
	Long: `Fetches recent Bluesky posts, filters out everything already synced,
and publishes the remainder to Mastodon in chronological order. Individual
post failures are recorded and do not fail the run; the command exits
non-zero only on fatal errors (state file, source fetch).`,
	RunE: runSyncCmd,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "simulate publishing; no posts and no state changes")
	syncCmd.Flags().StringVar(&syncState, "state", "", "sync state file (overrides config)")
	syncCmd.Flags().DurationVar(&syncLookback, "lookback", 0, "candidate window, e.g. 6h (overrides config)")
	syncCmd.Flags().IntVar(&syncMaxPosts, "max-posts", 0, "per-run cap (overrides config)")
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := initServices(ctx, syncState); err != nil {
		return err
	}
	if syncRunner == nil {
		return errors.New("sync service not configured")
	}

	opts := runOptions()
	opts.DryRun = syncDryRun

	if opts.DryRun {
		cmd.Println("Dry run: nothing will be published.")
	}

	runner := lockedRunner(syncRunner)
	report, err := runner.Run(ctx, opts)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// Ensure the wrapper still satisfies the runner port.
var _ driving.SyncRunner = (*lockedSyncRunner)(nil)

// lockedSyncRunner wraps a SyncRunner with the cross-process run lock, so a
// manual sync and a watch tick can never mutate the state file concurrently.
// Dry runs hold the lock too, keeping their fetch window consistent.
type lockedSyncRunner struct {
	runner   driving.SyncRunner
	lockPath string
}

// lockedRunner wraps the given runner with the lock derived from the
// effective state file path.
func lockedRunner(runner driving.SyncRunner) *lockedSyncRunner {
	return &lockedSyncRunner{runner: runner, lockPath: statePath() + ".lock"}
}

func (l *lockedSyncRunner) Run(ctx context.Context, opts driving.RunOptions) (*driving.RunReport, error) {
	if err := config.EnsureDir(l.lockPath); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	lock, err := statefile.AcquireRunLock(l.lockPath)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	defer lock.Release()

	return l.runner.Run(ctx, opts)
}

// runOptions builds options from config with flag overrides.
func runOptions() driving.RunOptions {
	opts := driving.RunOptions{}
	if appCfg != nil {
		opts.Lookback = appCfg.Sync.Lookback.Std()
		opts.MaxPosts = appCfg.Sync.MaxPostsPerRun
		opts.IncludeThreads = appCfg.Sync.IncludeThreads
	}
	if syncLookback > 0 {
		opts.Lookback = syncLookback
	}
	if syncMaxPosts > 0 {
		opts.MaxPosts = syncMaxPosts
	}
	return opts
}

// statePath resolves the effective state file path.
func statePath() string {
	if syncState != "" {
		return syncState
	}
	if appCfg != nil {
		return appCfg.Sync.StateFile
	}
	return "bridgefeed_state.json"
}

func printReport(cmd *cobra.Command, report *driving.RunReport) {
	label := "synced"
	if report.DryRun {
		label = "would sync"
	}
	cmd.Printf("Fetched %d, skipped %d, %s %d, failed %d\n",
		report.Fetched, report.Skipped, label, report.Synced, report.Failed)
	for _, rec := range report.Records {
		if rec.Success {
			cmd.Printf("  %s -> %s\n", rec.SourceID, rec.TargetID)
		} else {
			cmd.Printf("  %s failed: %s\n", rec.SourceID, rec.ErrorDetail)
		}
	}
}
