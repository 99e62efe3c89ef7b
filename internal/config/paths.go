package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mktorrent"

// GetConfigDir returns the per-user configuration directory.
func GetConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(appData, appName)
	case "darwin": // MacOS
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appName)
	default: // Linux
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appName)
	}
}

// GetSettingsPath returns the default settings file.
func GetSettingsPath() string {
	return filepath.Join(GetConfigDir(), "config.json")
}

// GetHistoryPath returns the history database file.
func GetHistoryPath() string {
	return filepath.Join(GetConfigDir(), "history.db")
}

// EnsureDirs creates the config directory.
func EnsureDirs() error {
	return os.MkdirAll(GetConfigDir(), 0o755)
}
