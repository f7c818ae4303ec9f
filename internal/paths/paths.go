// Package paths resolves the configuration and data directories of the
// recyclebin command.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"
)

// AppName names the per-user directories.
const AppName = "recyclebin"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else is configured.
const DefaultDataDirName = ".recyclebin-db"

// ConfigFileName is the file read from the configuration directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "RECYCLEBIN_CONFIG_DIR"
	EnvDataDir   = "RECYCLEBIN_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// userDir returns AppName below $xdgEnv on Linux, falling back to
// ~/linuxFallback. Other platforms use os.UserConfigDir.
func userDir(xdgEnv string, linuxFallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, linuxFallback...), AppName)...), nil
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/recyclebin (fallback ~/.config/recyclebin)
// macOS:   ~/Library/Application Support/recyclebin
// Windows: %APPDATA%/recyclebin
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific data directory.
//
// Linux:   $XDG_DATA_HOME/recyclebin (fallback ~/.local/share/recyclebin)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir returns the configuration directory with precedence
// flag > RECYCLEBIN_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok := lo.Coalesce(flag, os.Getenv(EnvConfigDir)); ok {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory with precedence flag >
// data_dir from config.yaml > RECYCLEBIN_DATA_DIR > $(CWD)/.recyclebin-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok := lo.Coalesce(flag, configValue, os.Getenv(EnvDataDir)); ok {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of the configuration file in dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}
