// Command bridgefeed is a scheduled cross-posting bridge from Bluesky to
// Mastodon.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aviary-labs/bridgefeed-cli/internal/adapters/driving/cli"
)

// version is overridden at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx, version); err != nil {
		os.Exit(1)
	}
}
