package cli

import (
	"github.com/spf13/cobra"

	"github.com/aviary-labs/bridgefeed-cli/internal/adapters/driven/statefile"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
)

var stateFileFlag string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show a summary of the sync state file",
	RunE:  runStateCmd,
}

func init() {
	stateCmd.Flags().StringVar(&stateFileFlag, "state", "", "sync state file (overrides config)")
	rootCmd.AddCommand(stateCmd)
}

func runStateCmd(cmd *cobra.Command, _ []string) error {
	path := stateFileFlag
	if path == "" {
		if cfg, err := loadConfig(); err == nil {
			path = cfg.Sync.StateFile
		} else {
			return err
		}
	}

	var store driven.SyncStateStore = stateStore
	if store == nil {
		store = statefile.NewStore(path)
	}

	state, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("State file: %s\n", path)
	cmd.Printf("Synced posts: %d\n", len(state.SyncedPosts))
	cmd.Printf("Attempt records: %d\n", len(state.SyncRecords))

	failures := 0
	for _, r := range state.SyncRecords {
		if !r.Success {
			failures++
		}
	}
	cmd.Printf("Failed attempts: %d\n", failures)

	if last := state.LastSyncedAt(); !last.IsZero() {
		cmd.Printf("Last synced: %s\n", last.Format("2006-01-02 15:04:05 MST"))
	} else {
		cmd.Println("Last synced: never")
	}
	return nil
}
