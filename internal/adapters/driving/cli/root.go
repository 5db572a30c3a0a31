// Package cli implements the cobra command surface for bridgefeed.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aviary-labs/bridgefeed-cli/internal/adapters/driven/config"
	"github.com/aviary-labs/bridgefeed-cli/internal/adapters/driven/statefile"
	"github.com/aviary-labs/bridgefeed-cli/internal/connectors/bluesky"
	"github.com/aviary-labs/bridgefeed-cli/internal/connectors/mastodon"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driving"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/services"
	"github.com/aviary-labs/bridgefeed-cli/internal/logger"
	"github.com/aviary-labs/bridgefeed-cli/internal/transform"
)

// version is set by Execute.
var version = "dev"

// Package-level services. Wired lazily by initServices; tests replace them
// directly.
var (
	appCfg       *config.Config
	syncRunner   driving.SyncRunner
	sourceClient driven.SourceClient
	destClient   driven.DestinationClient
	stateStore   driven.SyncStateStore
)

// Persistent flag values.
var (
	cfgFile     string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "bridgefeed",
	Short: "Cross-post recent Bluesky posts to Mastodon",
	Long: `bridgefeed reads recent posts from a Bluesky account, transforms them
into Mastodon's format and republishes them, keeping a local state file so
no post is ever published twice across scheduled runs.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.bridgefeed/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	return ExecuteContext(context.Background(), v)
}

// ExecuteContext runs the CLI with a caller-provided context, typically one
// cancelled on SIGINT/SIGTERM.
func ExecuteContext(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves and loads the configuration once per invocation.
func loadConfig() (*config.Config, error) {
	if appCfg != nil {
		return appCfg, nil
	}
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	appCfg = cfg
	return cfg, nil
}

// initServices wires the connectors, transformer, state store and
// orchestrator from configuration. No-op when a test has already installed
// a runner.
func initServices(ctx context.Context, statePath string) error {
	if syncRunner != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if statePath == "" {
		statePath = cfg.Sync.StateFile
	}

	sourceClient = bluesky.NewClient(bluesky.Config{
		BaseURL:     cfg.Bluesky.BaseURL,
		Handle:      cfg.Bluesky.Handle,
		AppPassword: cfg.Bluesky.AppPassword,
	})
	destClient = mastodon.NewClient(ctx, mastodon.Config{
		InstanceURL: cfg.Mastodon.InstanceURL,
		AccessToken: cfg.Mastodon.AccessToken,
	})
	transformer := transform.New(transform.Options{
		IncludeMedia: cfg.Sync.IncludeMedia,
		IncludeLinks: cfg.Sync.IncludeLinks,
	})
	stateStore = statefile.NewStore(statePath)

	syncRunner = services.NewSyncOrchestrator(sourceClient, destClient, transformer, stateStore)
	return nil
}
