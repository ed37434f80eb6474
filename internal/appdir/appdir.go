// Package appdir resolves the app-local storage locations used by sonaris.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName       = "Sonaris"
	settingsFile  = "settings.json"
	recordingsDir = "recordings"
)

// Dir is the resolved app data directory.
type Dir string

// Resolve returns the data directory. An explicit override wins; otherwise the
// path is expanded at runtime to:
//
//	$XDG_CONFIG_HOME/Sonaris (or the platform equivalent)
func Resolve(override string) (Dir, error) {
	if override != "" {
		return Dir(override), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	return Dir(filepath.Join(base, appName)), nil
}

// SettingsPath returns the path of the persisted credential store.
func (d Dir) SettingsPath() string {
	return filepath.Join(string(d), settingsFile)
}

// RecordingsPath returns the directory holding recorded audio files.
func (d Dir) RecordingsPath() string {
	return filepath.Join(string(d), recordingsDir)
}

// Prep ensures that the data directory and its recordings folder exist.
func (d Dir) Prep() error {
	if err := os.MkdirAll(d.RecordingsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", d, err)
	}

	return nil
}
