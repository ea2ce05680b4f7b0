// Package paths resolves the configuration directory, the workspace root and
// the data directory, and names the documents inside a workspace.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Default directory names.
const (
	AppName            = "compass"
	DefaultDataDirName = ".compass-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "COMPASS_CONFIG_DIR"
	EnvRoot      = "COMPASS_ROOT"
	EnvDataDir   = "COMPASS_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/compass (fallback ~/.config/compass)
// macOS:   ~/Library/Application Support/compass
// Windows: %APPDATA%/compass
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > COMPASS_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveRoot returns the workspace root following the precedence chain:
// flag > configYAMLValue > COMPASS_ROOT env > current directory.
func ResolveRoot(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvRoot); env != "" {
		return filepath.Abs(env)
	}
	return platformDir.getwd()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > COMPASS_DATA_DIR env > <root>/.compass-db.
func ResolveDataDir(flag, configYAMLValue, root string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Join(root, DefaultDataDirName), nil
}
