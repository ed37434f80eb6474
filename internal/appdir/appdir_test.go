package appdir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/sonaris/internal/appdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Override(t *testing.T) {
	dir, err := appdir.Resolve("/tmp/sonaris-data")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sonaris-data/settings.json", dir.SettingsPath())
	assert.Equal(t, "/tmp/sonaris-data/recordings", dir.RecordingsPath())
}

func TestResolve_UserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")

	dir, err := appdir.Resolve("")
	require.NoError(t, err)

	assert.Equal(t, "Sonaris", filepath.Base(string(dir)))
}

func TestDir_Prep(t *testing.T) {
	dir := appdir.Dir(filepath.Join(t.TempDir(), "data"))

	require.NoError(t, dir.Prep())

	info, err := os.Stat(dir.RecordingsPath())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent
	require.NoError(t, dir.Prep())
}
