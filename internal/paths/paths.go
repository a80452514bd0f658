// Package paths resolves the configuration and data directories karte uses.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user directories karte creates.
const appName = "karte"

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KARTE_CONFIG_DIR"
	EnvDataDir   = "KARTE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/karte (fallback ~/.config/karte)
// macOS:   ~/Library/Application Support/karte
// Windows: %APPDATA%/karte
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory. The
// database file and the uploads directory live here.
//
// Linux:   $XDG_DATA_HOME/karte (fallback ~/.local/share/karte)
// macOS:   ~/Library/Application Support/karte/data
// Windows: %APPDATA%/karte/data
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appName), nil
	default:
		// Kept apart from config.yaml, which shares the same parent here.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName, "data"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > KARTE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml data_dir > KARTE_DATA_DIR env > DefaultDataDir().
//
// A relative data_dir from config.yaml is taken relative to configDir, so a
// config directory can be moved together with its data.
func ResolveDataDir(flag, configValue, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		if !filepath.IsAbs(configValue) && configDir != "" {
			configValue = filepath.Join(configDir, configValue)
		}
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
