// Package config loads bridgefeed configuration from a TOML file with
// environment variable overrides. Environment wins over file values so the
// credentials can stay out of the config file in scheduled environments.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults.
const (
	DefaultLookback   = 6 * time.Hour
	DefaultInterval   = 15 * time.Minute
	DefaultMaxPosts   = 5
	DefaultStateFile  = "bridgefeed_state.json"
	defaultConfigDir  = ".bridgefeed"
	defaultConfigFile = "config.toml"
	defaultFilePerms  = 0o700
)

// Duration wraps time.Duration so TOML values can use duration strings like
// "6h" or "15m".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(data []byte) error {
	parsed, err := time.ParseDuration(string(data))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(data), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full application configuration.
type Config struct {
	Bluesky  BlueskyConfig  `toml:"bluesky"`
	Mastodon MastodonConfig `toml:"mastodon"`
	Sync     SyncConfig     `toml:"sync"`
}

// BlueskyConfig holds the source account credentials.
type BlueskyConfig struct {
	// Handle is the account handle (e.g. "alice.bsky.social").
	Handle string `toml:"handle"`

	// AppPassword is an app-specific password.
	AppPassword string `toml:"app_password"`

	// BaseURL overrides the PDS endpoint. Optional.
	BaseURL string `toml:"base_url,omitempty"`
}

// MastodonConfig holds the destination account credentials.
type MastodonConfig struct {
	// InstanceURL is the base URL of the instance.
	InstanceURL string `toml:"instance_url"`

	// AccessToken is the OAuth bearer token.
	AccessToken string `toml:"access_token"`
}

// SyncConfig holds run behaviour settings.
type SyncConfig struct {
	// Lookback is how far back to fetch candidate posts.
	Lookback Duration `toml:"lookback"`

	// Interval is the delay between scheduled runs in watch mode.
	Interval Duration `toml:"interval"`

	// MaxPostsPerRun caps how many posts one run may publish.
	MaxPostsPerRun int `toml:"max_posts_per_run"`

	// IncludeMedia carries image attachments across.
	IncludeMedia bool `toml:"include_media"`

	// IncludeLinks appends external link card URLs.
	IncludeLinks bool `toml:"include_links"`

	// IncludeThreads bridges self-reply thread continuations.
	IncludeThreads bool `toml:"include_threads"`

	// StateFile is the sync state file path.
	StateFile string `toml:"state_file"`
}

// DefaultPath returns the default config file location
// (~/.bridgefeed/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, defaultConfigDir, defaultConfigFile), nil
}

// Default returns the configuration defaults applied before file and
// environment values.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Lookback:       Duration(DefaultLookback),
			Interval:       Duration(DefaultInterval),
			MaxPostsPerRun: DefaultMaxPosts,
			IncludeMedia:   true,
			IncludeLinks:   true,
			IncludeThreads: true,
			StateFile:      DefaultStateFile,
		},
	}
}

// Load reads the config file at path (missing file is fine, defaults apply)
// and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file; defaults plus environment.
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto the config. The credential
// names match the original deployment environment; behaviour toggles use
// their legacy names too.
func applyEnv(cfg *Config) {
	setString(&cfg.Bluesky.Handle, "BLUESKY_USERNAME")
	setString(&cfg.Bluesky.AppPassword, "BLUESKY_PASSWORD")
	setString(&cfg.Bluesky.BaseURL, "BLUESKY_BASE_URL")
	setString(&cfg.Mastodon.InstanceURL, "MASTODON_INSTANCE_URL")
	setString(&cfg.Mastodon.AccessToken, "MASTODON_ACCESS_TOKEN")
	setString(&cfg.Sync.StateFile, "BRIDGEFEED_STATE_FILE")

	if v, ok := lookupInt("LOOKBACK_HOURS"); ok {
		cfg.Sync.Lookback = Duration(time.Duration(v) * time.Hour)
	}
	if v, ok := lookupInt("SYNC_INTERVAL_MINUTES"); ok {
		cfg.Sync.Interval = Duration(time.Duration(v) * time.Minute)
	}
	if v, ok := lookupInt("MAX_POSTS_PER_RUN"); ok {
		cfg.Sync.MaxPostsPerRun = v
	}
	setBool(&cfg.Sync.IncludeMedia, "INCLUDE_MEDIA")
	setBool(&cfg.Sync.IncludeLinks, "INCLUDE_LINKS")
	setBool(&cfg.Sync.IncludeThreads, "INCLUDE_THREADS")
}

// Validate checks that the credentials required for a live run are present.
func (c *Config) Validate() error {
	if c.Bluesky.Handle == "" || c.Bluesky.AppPassword == "" {
		return fmt.Errorf("bluesky credentials missing (set bluesky.handle and bluesky.app_password, or BLUESKY_USERNAME / BLUESKY_PASSWORD)")
	}
	if c.Mastodon.InstanceURL == "" || c.Mastodon.AccessToken == "" {
		return fmt.Errorf("mastodon credentials missing (set mastodon.instance_url and mastodon.access_token, or MASTODON_INSTANCE_URL / MASTODON_ACCESS_TOKEN)")
	}
	return nil
}

// EnsureDir creates the directory holding the given file path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), defaultFilePerms)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func lookupInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
