package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultLookback, cfg.Sync.Lookback.Std())
	assert.Equal(t, DefaultInterval, cfg.Sync.Interval.Std())
	assert.Equal(t, DefaultMaxPosts, cfg.Sync.MaxPostsPerRun)
	assert.Equal(t, DefaultStateFile, cfg.Sync.StateFile)
	assert.True(t, cfg.Sync.IncludeMedia)
	assert.True(t, cfg.Sync.IncludeLinks)
	assert.True(t, cfg.Sync.IncludeThreads)
}

func TestLoad_ReadsTOML(t *testing.T) {
	path := writeConfig(t, `
[bluesky]
handle = "alice.bsky.social"
app_password = "abcd-efgh"

[mastodon]
instance_url = "https://mastodon.example"
access_token = "token123"

[sync]
lookback = "12h"
interval = "30m"
max_posts_per_run = 10
include_threads = false
state_file = "/var/lib/bridgefeed/state.json"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "alice.bsky.social", cfg.Bluesky.Handle)
	assert.Equal(t, "abcd-efgh", cfg.Bluesky.AppPassword)
	assert.Equal(t, "https://mastodon.example", cfg.Mastodon.InstanceURL)
	assert.Equal(t, "token123", cfg.Mastodon.AccessToken)
	assert.Equal(t, 12*time.Hour, cfg.Sync.Lookback.Std())
	assert.Equal(t, 30*time.Minute, cfg.Sync.Interval.Std())
	assert.Equal(t, 10, cfg.Sync.MaxPostsPerRun)
	assert.False(t, cfg.Sync.IncludeThreads)
	assert.True(t, cfg.Sync.IncludeMedia, "unset values keep their defaults")
	assert.Equal(t, "/var/lib/bridgefeed/state.json", cfg.Sync.StateFile)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "[sync\nlookback = ")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
[sync]
lookback = "six hours"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[bluesky]
handle = "file.bsky.social"
app_password = "from-file"

[sync]
lookback = "12h"
`)
	t.Setenv("BLUESKY_USERNAME", "env.bsky.social")
	t.Setenv("BLUESKY_PASSWORD", "from-env")
	t.Setenv("MASTODON_INSTANCE_URL", "https://env.example")
	t.Setenv("MASTODON_ACCESS_TOKEN", "env-token")
	t.Setenv("LOOKBACK_HOURS", "24")
	t.Setenv("SYNC_INTERVAL_MINUTES", "5")
	t.Setenv("MAX_POSTS_PER_RUN", "2")
	t.Setenv("INCLUDE_THREADS", "false")
	t.Setenv("BRIDGEFEED_STATE_FILE", "/tmp/env-state.json")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env.bsky.social", cfg.Bluesky.Handle)
	assert.Equal(t, "from-env", cfg.Bluesky.AppPassword)
	assert.Equal(t, "https://env.example", cfg.Mastodon.InstanceURL)
	assert.Equal(t, "env-token", cfg.Mastodon.AccessToken)
	assert.Equal(t, 24*time.Hour, cfg.Sync.Lookback.Std())
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval.Std())
	assert.Equal(t, 2, cfg.Sync.MaxPostsPerRun)
	assert.False(t, cfg.Sync.IncludeThreads)
	assert.Equal(t, "/tmp/env-state.json", cfg.Sync.StateFile)
}

func TestLoad_EmptyEnvValuesIgnored(t *testing.T) {
	t.Setenv("BLUESKY_USERNAME", "")
	t.Setenv("LOOKBACK_HOURS", "")
	t.Setenv("INCLUDE_MEDIA", "not-a-bool")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Empty(t, cfg.Bluesky.Handle)
	assert.Equal(t, DefaultLookback, cfg.Sync.Lookback.Std())
	assert.True(t, cfg.Sync.IncludeMedia)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bluesky credentials missing")

	cfg.Bluesky.Handle = "alice.bsky.social"
	cfg.Bluesky.AppPassword = "pw"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mastodon credentials missing")

	cfg.Mastodon.InstanceURL = "https://mastodon.example"
	cfg.Mastodon.AccessToken = "token"
	assert.NoError(t, cfg.Validate())
}

func TestDuration_RoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90m")))
	assert.Equal(t, 90*time.Minute, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1h30m0s", string(text))
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	require.NoError(t, EnsureDir(path))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
