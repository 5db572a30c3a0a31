package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCmd_Use(t *testing.T) {
	assert.Equal(t, "verify", verifyCmd.Use)
}

func TestVerifyCmd_BothOK(t *testing.T) {
	buf := setupCLITest(t, nil)
	appCfg = validConfig()
	sourceClient = &stubSource{}
	destClient = &stubDestination{}

	rootCmd.SetArgs([]string{"verify"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Bluesky: OK (alice.bsky.social)")
	assert.Contains(t, buf.String(), "Mastodon: OK (https://mastodon.example)")
}

func TestVerifyCmd_DestinationFails(t *testing.T) {
	buf := setupCLITest(t, nil)
	appCfg = validConfig()
	sourceClient = &stubSource{}
	destClient = &stubDestination{verifyErr: errors.New("401 unauthorized")}

	rootCmd.SetArgs([]string{"verify"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential verification failed")
	assert.Contains(t, buf.String(), "Bluesky: OK")
	assert.Contains(t, buf.String(), "Mastodon: FAILED (401 unauthorized)")
}

func TestVerifyCmd_MissingCredentials(t *testing.T) {
	setupCLITest(t, nil)
	cfg := validConfig()
	cfg.Mastodon.AccessToken = ""
	appCfg = cfg

	rootCmd.SetArgs([]string{"verify"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mastodon credentials missing")
}
