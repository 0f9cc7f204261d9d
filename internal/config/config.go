package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HomeEnv overrides the configuration directory
	HomeEnv = "ANALYST_HOME"
)

var (
	// ConfigDir is the global configuration directory (~/.nasa-analyst)
	ConfigDir string

	// SettingsFile is the optional YAML settings file
	SettingsFile string

	// KeybindsFile holds user key binding overrides
	KeybindsFile string

	// DatabasePath is the SQLite database of the development server
	DatabasePath string

	// LogFile receives debug logs of the terminal UI
	LogFile string

	// ExportDir is where exported charts are written
	ExportDir string

	// SessionFile keeps UI state between runs
	SessionFile string
)

// Initialize sets up the configuration directory and paths.
// It creates ~/.nasa-analyst/ if it doesn't exist.
func Initialize() error {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".nasa-analyst")
	}

	ConfigDir = dir
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
	DatabasePath = filepath.Join(ConfigDir, "history.db")
	LogFile = filepath.Join(ConfigDir, "debug.log")
	ExportDir = filepath.Join(ConfigDir, "charts")
	SessionFile = filepath.Join(ConfigDir, "session.json")

	for _, d := range []string{ConfigDir, ExportDir} {
		if err := os.MkdirAll(d, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	return nil
}
