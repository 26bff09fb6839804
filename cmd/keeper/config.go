// Config loading for the keeper CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/keeper/internal/paths"
	"github.com/mesh-intelligence/keeper/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyDataDir    = "data_dir"
	cfgKeyDBPath     = "db_path"
	cfgKeyUsersFile  = "users_file"
	cfgKeyTimeout    = "timeout"
	cfgKeyBatchSize  = "batch_size"
	cfgKeyBcryptCost = "bcrypt_cost"
	cfgKeyLogLevel   = "log_level"
	cfgKeyLogFormat  = "log_format"
)

// envBindings maps config keys to environment overrides. data_dir is left
// out: its env override sits below config.yaml in paths.ResolveDataDir.
var envBindings = map[string]string{
	cfgKeyDBPath:     "KEEPER_DB_PATH",
	cfgKeyUsersFile:  "KEEPER_USERS_FILE",
	cfgKeyTimeout:    "KEEPER_TIMEOUT",
	cfgKeyBatchSize:  "KEEPER_BATCH_SIZE",
	cfgKeyBcryptCost: "KEEPER_BCRYPT_COST",
	cfgKeyLogLevel:   "KEEPER_LOG_LEVEL",
	cfgKeyLogFormat:  "KEEPER_LOG_FORMAT",
}

// settings is the resolved configuration for one command run.
type settings struct {
	DataDir    string
	DBPath     string
	UsersFile  string
	Timeout    time.Duration
	BatchSize  int
	BcryptCost int
	LogLevel   string
	LogFormat  string
}

// configFile is the structure written to config.yaml by init.
type configFile struct {
	DataDir    string `yaml:"data_dir,omitempty"`
	DBPath     string `yaml:"db_path,omitempty"`
	UsersFile  string `yaml:"users_file,omitempty"`
	Timeout    string `yaml:"timeout"`
	BatchSize  int    `yaml:"batch_size"`
	BcryptCost int    `yaml:"bcrypt_cost"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

// loadSettings reads config.yaml from configDir using Viper and resolves
// file locations. A missing config.yaml is not an error.
func loadSettings(configDir, flagDataDir string) (settings, error) {
	v := viper.New()
	v.SetDefault(cfgKeyTimeout, types.DefaultTimeout)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetDefault(cfgKeyBcryptCost, types.DefaultBcryptCost)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, "text")
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return settings{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}
	dbPath, err := paths.ResolveFile(dataDir, v.GetString(cfgKeyDBPath), paths.DatabaseFileName)
	if err != nil {
		return settings{}, fmt.Errorf("resolve db path: %w", err)
	}
	usersFile, err := paths.ResolveFile(dataDir, v.GetString(cfgKeyUsersFile), paths.UsersFileName)
	if err != nil {
		return settings{}, fmt.Errorf("resolve users file: %w", err)
	}

	return settings{
		DataDir:    dataDir,
		DBPath:     dbPath,
		UsersFile:  usersFile,
		Timeout:    v.GetDuration(cfgKeyTimeout),
		BatchSize:  v.GetInt(cfgKeyBatchSize),
		BcryptCost: v.GetInt(cfgKeyBcryptCost),
		LogLevel:   v.GetString(cfgKeyLogLevel),
		LogFormat:  v.GetString(cfgKeyLogFormat),
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, paths.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	cfg := configFile{
		DataDir:    dataDir,
		Timeout:    types.DefaultTimeout.String(),
		BatchSize:  types.DefaultBatchSize,
		BcryptCost: types.DefaultBcryptCost,
		LogLevel:   "warn",
		LogFormat:  "text",
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
