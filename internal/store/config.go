package store

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	envConfigDir = "WEBIDE_CONFIG_DIR"
	envStorage   = "WEBIDE_STORAGE"

	sqliteFileName = "webide.sqlite"
	logFileName    = "webide.log"
)

// Config keys shared between the host and the controllers.
const (
	KeyCurrentProject   = "current_project"
	KeyInstalledPlugins = "installed_plugins"
	KeyTheme            = "theme"
)

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.webide).
	if v := strings.TrimSpace(os.Getenv(envConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".webide"), nil
}

// SQLitePath is the location of the key/value config database.
func SQLitePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sqliteFileName), nil
}

// LogPath is where the TUI writes its log while it owns the terminal.
func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// StorageDir resolves the local directory that stands in for the device
// storage root. Precedence: explicit value, WEBIDE_STORAGE, <config dir>/storage.
func StorageDir(explicit string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return filepath.Abs(v)
	}
	if v := strings.TrimSpace(os.Getenv(envStorage)); v != "" {
		return filepath.Abs(v)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storage"), nil
}
