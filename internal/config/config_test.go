package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
storage:
  driver: sqlite
  path: /tmp/synergy-test.db
auth:
  client_id: from-file
  timeout: 30s
ui:
  theme: light
`), 0o600))

	t.Setenv("SYNERGY_OAUTH_CLIENT_ID", "from-env")
	t.Setenv("SYNERGY_PHOTO_QUALITY", "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.Production())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/synergy-test.db", cfg.Storage.Path)
	assert.Equal(t, "from-env", cfg.Auth.ClientID)
	assert.Equal(t, 30*time.Second, cfg.Auth.Timeout)
	assert.Equal(t, 75, cfg.Photo.Quality)
	assert.Equal(t, "light", cfg.UI.Theme)
	// untouched defaults survive
	assert.Equal(t, "127.0.0.1:51122", cfg.Auth.CallbackAddr)
	assert.Equal(t, []string{"openid", "email", "profile"}, cfg.Auth.Scopes)
}

func TestEnvOnly(t *testing.T) {
	t.Setenv("SYNERGY_DB_DRIVER", "sqlite")
	t.Setenv("SYNERGY_OAUTH_SCOPES", "openid,email")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, []string{"openid", "email"}, cfg.Auth.Scopes)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Env = "staging"
	cfg.Storage.Driver = "postgres"
	cfg.UI.Theme = "sepia"
	cfg.Photo.Quality = 0
	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"env", "storage.driver", "ui.theme", "photo.quality"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestInvalidFileFailsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: oracle\n"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "storage.driver")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Fixtures.Path = "/data/seed.yaml"
	cfg.Fixtures.Watch = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvHelp(t *testing.T) {
	help, err := EnvHelp()
	require.NoError(t, err)
	assert.Contains(t, help, "SYNERGY_DB_DRIVER")
}
