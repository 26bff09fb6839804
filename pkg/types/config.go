package types

import (
	"log/slog"
	"time"
)

// Defaults applied when a config field is left at its zero value.
const (
	DefaultBatchSize  = 500
	DefaultTimeout    = 5 * time.Second
	DefaultBcryptCost = 10
	MinBcryptCost     = 4
	MaxBcryptCost     = 31

	// MemoryDB opens a private in-memory database.
	MemoryDB = ":memory:"
)

// LoaderConfig holds parameters for a bulk loader connection.
type LoaderConfig struct {
	// DBPath is the SQLite database file, or MemoryDB.
	DBPath string `json:"db_path" yaml:"db_path"`

	// Timeout is how long a statement waits on a locked database before
	// failing. It is not a per-operation deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// BatchSize is the default number of rows per multi-row insert.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Logger receives debug events. Nil means slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// Validate checks that the LoaderConfig is well-formed.
func (c LoaderConfig) Validate() error {
	if c.DBPath == "" {
		return ErrDBPathEmpty
	}
	if c.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	if c.BatchSize < 0 {
		return ErrBatchSize
	}
	return nil
}

// GetTimeout returns Timeout, or DefaultTimeout when unset.
func (c LoaderConfig) GetTimeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// GetBatchSize returns BatchSize, or DefaultBatchSize when unset.
func (c LoaderConfig) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// GetLogger returns Logger, or slog.Default() when unset.
func (c LoaderConfig) GetLogger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// StoreConfig holds parameters for a credential store.
type StoreConfig struct {
	// Path is the JSONL credential file.
	Path string `json:"users_file" yaml:"users_file"`

	// BcryptCost is the bcrypt work factor. Zero means DefaultBcryptCost.
	BcryptCost int `json:"bcrypt_cost" yaml:"bcrypt_cost"`

	// Logger receives debug events. Nil means slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// Validate checks that the StoreConfig is well-formed.
func (c StoreConfig) Validate() error {
	if c.Path == "" {
		return ErrUsersFileEmpty
	}
	if c.BcryptCost != 0 && (c.BcryptCost < MinBcryptCost || c.BcryptCost > MaxBcryptCost) {
		return ErrBcryptCost
	}
	return nil
}

// GetBcryptCost returns BcryptCost, or DefaultBcryptCost when unset.
func (c StoreConfig) GetBcryptCost() int {
	if c.BcryptCost == 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}

// GetLogger returns Logger, or slog.Default() when unset.
func (c StoreConfig) GetLogger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
