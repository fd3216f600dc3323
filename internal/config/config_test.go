package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", cfg.Auth.Listen)
	assert.Equal(t, 5*time.Minute, cfg.Auth.Timeout)
	assert.Equal(t, time.Minute, cfg.Fetch.Timeout)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, "-05:00", cfg.Timezone.Offset)
	assert.Empty(t, cfg.Google.ClientId)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	yaml := `
google:
  clientid: file-client
  clientsecret: file-secret
auth:
  timeout: 2m
export:
  dir: /tmp/invoices
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CALINVOICE_GOOGLE_CLIENTSECRET", "env-secret")
	t.Setenv("CALINVOICE_FETCH_TIMEOUT", "30s")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "file-client", cfg.Google.ClientId)
	assert.Equal(t, "env-secret", cfg.Google.ClientSecret)
	assert.Equal(t, 2*time.Minute, cfg.Auth.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "/tmp/invoices", cfg.Export.Dir)
	assert.Equal(t, "127.0.0.1:0", cfg.Auth.Listen)
}

func TestLoad_InvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("google: [unclosed"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingClientId)

	cfg.Google.ClientId = "   "
	assert.ErrorIs(t, cfg.Validate(), ErrMissingClientId)

	cfg.Google.ClientId = "client"
	assert.NoError(t, cfg.Validate())

	cfg.Auth.Timeout = 0
	assert.Error(t, cfg.Validate())
}
