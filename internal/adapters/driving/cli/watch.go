package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/services"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the sync on a schedule until interrupted",
	Long: `Runs a sync pass immediately and then every configured interval.
A tick that fires while the previous run is still in flight is skipped, so
at most one run is ever active. Stop with Ctrl-C.`,
	RunE: runWatchCmd,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "time between runs, e.g. 15m (overrides config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := initServices(ctx, ""); err != nil {
		return err
	}
	if syncRunner == nil {
		return errors.New("sync service not configured")
	}

	interval := watchInterval
	if interval <= 0 && appCfg != nil {
		interval = appCfg.Sync.Interval.Std()
	}
	if interval <= 0 {
		return errors.New("interval must be positive")
	}

	cmd.Printf("Watching: syncing every %s (Ctrl-C to stop)\n", interval)

	// Each tick takes the same run lock as a manual sync, so an operator
	// running `bridgefeed sync` beside a watch process cannot race the
	// state file; the colliding tick fails and is retried next interval.
	scheduler := services.NewScheduler(lockedRunner(syncRunner), interval, runOptions())
	err := scheduler.Start(ctx)
	if errors.Is(err, context.Canceled) {
		cmd.Println("Stopped.")
		return nil
	}
	return err
}
