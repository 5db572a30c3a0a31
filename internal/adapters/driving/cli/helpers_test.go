package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/aviary-labs/bridgefeed-cli/internal/adapters/driven/config"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driving"
)

// mockSyncRunner implements driving.SyncRunner for command tests. The watch
// command invokes Run from the scheduler goroutine, so access is guarded.
type mockSyncRunner struct {
	report *driving.RunReport
	err    error

	mu      sync.Mutex
	gotOpts driving.RunOptions
	calls   int
}

func (m *mockSyncRunner) Run(_ context.Context, opts driving.RunOptions) (*driving.RunReport, error) {
	m.mu.Lock()
	m.calls++
	m.gotOpts = opts
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &driving.RunReport{}, nil
}

func (m *mockSyncRunner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockSyncRunner) lastOpts() driving.RunOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gotOpts
}

// stubSource implements driven.SourceClient with a fixed Verify outcome.
type stubSource struct{ verifyErr error }

func (s *stubSource) Verify(_ context.Context) error { return s.verifyErr }

func (s *stubSource) FetchRecent(_ context.Context, _ driven.FetchWindow) ([]domain.Post, error) {
	return nil, nil
}

// stubDestination implements driven.DestinationClient with a fixed Verify
// outcome.
type stubDestination struct{ verifyErr error }

func (s *stubDestination) Verify(_ context.Context) error { return s.verifyErr }

func (s *stubDestination) Publish(_ context.Context, _ domain.Status) (string, error) {
	return "", nil
}

// validConfig returns a config that passes Validate.
func validConfig() *config.Config {
	cfg := config.Default()
	cfg.Bluesky.Handle = "alice.bsky.social"
	cfg.Bluesky.AppPassword = "app-pw"
	cfg.Mastodon.InstanceURL = "https://mastodon.example"
	cfg.Mastodon.AccessToken = "token"
	return cfg
}

// setupCLITest swaps the package-level services for mocks and captures
// command output. State is restored on test cleanup.
func setupCLITest(t *testing.T, runner driving.SyncRunner) *bytes.Buffer {
	t.Helper()

	oldRunner := syncRunner
	oldCfg := appCfg
	oldSource := sourceClient
	oldDest := destClient
	oldStore := stateStore

	syncRunner = runner

	t.Cleanup(func() {
		syncRunner = oldRunner
		appCfg = oldCfg
		sourceClient = oldSource
		destClient = oldDest
		stateStore = oldStore

		syncDryRun = false
		syncState = ""
		syncLookback = 0
		syncMaxPosts = 0
		stateFileFlag = ""
		watchInterval = 0

		rootCmd.SetArgs(nil)

		// Cobra caches the context a command was first executed with and
		// only re-propagates from the root when it is nil, so clear it to
		// keep contexts from leaking between tests.
		rootCmd.SetContext(nil)
		for _, c := range rootCmd.Commands() {
			c.SetContext(nil)
		}
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	return buf
}
