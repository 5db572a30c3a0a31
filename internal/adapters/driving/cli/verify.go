package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aviary-labs/bridgefeed-cli/internal/connectors/bluesky"
	"github.com/aviary-labs/bridgefeed-cli/internal/connectors/mastodon"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check credentials for both platforms",
	Long: `Verifies the Bluesky and Mastodon credentials by making a lightweight
authenticated call to each platform. When the Bluesky app password is not
configured, it is prompted for interactively.`,
	RunE: runVerifyCmd,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerifyCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Bluesky.AppPassword == "" && cfg.Bluesky.Handle != "" {
		cmd.Printf("App password for %s: ", cfg.Bluesky.Handle)
		cfg.Bluesky.AppPassword = readPassword()
		cmd.Println()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	failed := false

	src := sourceClient
	if src == nil {
		src = bluesky.NewClient(bluesky.Config{
			BaseURL:     cfg.Bluesky.BaseURL,
			Handle:      cfg.Bluesky.Handle,
			AppPassword: cfg.Bluesky.AppPassword,
		})
	}
	if err := src.Verify(ctx); err != nil {
		cmd.Printf("Bluesky: FAILED (%v)\n", err)
		failed = true
	} else {
		cmd.Printf("Bluesky: OK (%s)\n", cfg.Bluesky.Handle)
	}

	dst := destClient
	if dst == nil {
		dst = mastodon.NewClient(ctx, mastodon.Config{
			InstanceURL: cfg.Mastodon.InstanceURL,
			AccessToken: cfg.Mastodon.AccessToken,
		})
	}
	if err := dst.Verify(ctx); err != nil {
		cmd.Printf("Mastodon: FAILED (%v)\n", err)
		failed = true
	} else {
		cmd.Printf("Mastodon: OK (%s)\n", cfg.Mastodon.InstanceURL)
	}

	if failed {
		return fmt.Errorf("credential verification failed")
	}
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
