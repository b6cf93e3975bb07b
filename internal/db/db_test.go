package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	database, err := New(DriverPure, Memory)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSettingsRoundTrip(t *testing.T) {
	database := openMemory(t)

	v, err := database.GetSetting("synergy-theme")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, database.SetSetting("synergy-theme", "dark"))
	require.NoError(t, database.SetSetting("synergy-theme", "light"))
	v, err = database.GetSetting("synergy-theme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	require.NoError(t, database.SetSetting("synergy-auth", "true"))
	all, err := database.ListSettings()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"synergy-auth": "true", "synergy-theme": "light"}, all)

	require.NoError(t, database.DeleteSetting("synergy-theme"))
	v, _ = database.GetSetting("synergy-theme")
	assert.Empty(t, v)

	require.NoError(t, database.ClearSettings())
	all, _ = database.ListSettings()
	assert.Empty(t, all)
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "synergy.db")

	database, err := New(DriverPure, path)
	require.NoError(t, err)
	require.NoError(t, database.SetSetting("synergy-auth", "true"))
	require.NoError(t, database.Close())

	database, err = New(DriverPure, path)
	require.NoError(t, err)
	defer database.Close()
	v, err := database.GetSetting("synergy-auth")
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}

func TestUnknownDriver(t *testing.T) {
	_, err := New("postgres", Memory)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestDefaultPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "synergy", "synergy.db"), p)
}
