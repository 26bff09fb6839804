// Package paths resolves where keeper keeps its configuration, credential
// file and database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Directory and file names.
const (
	AppName            = "keeper"
	DefaultDataDirName = ".keeper"
	ConfigFileName     = "config.yaml"
	DatabaseFileName   = "keeper.db"
	UsersFileName      = "users.jsonl"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KEEPER_CONFIG_DIR"
	EnvDataDir   = "KEEPER_DATA_DIR"
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
// Linux:   $XDG_CONFIG_HOME/keeper (fallback ~/.config/keeper)
// macOS:   ~/Library/Application Support/keeper
// Windows: %APPDATA%/keeper
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > KEEPER_CONFIG_DIR env > DefaultConfigDir().
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
// flag > configValue > KEEPER_DATA_DIR env > $(CWD)/.keeper.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveFile returns configValue made absolute when set, else name inside
// dataDir. ":memory:" is passed through untouched.
func ResolveFile(dataDir, configValue, name string) (string, error) {
	switch configValue {
	case "":
		return filepath.Join(dataDir, name), nil
	case ":memory:":
		return configValue, nil
	}
	return filepath.Abs(configValue)
}
