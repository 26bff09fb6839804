// Package sqlite implements the bulk loader: a single SQLite connection that
// runs caller-supplied statements and loads CSV and JSON files into tables
// in batches.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

// Loader implements types.BulkLoader. It owns at most one open connection
// and at most one pending transaction. The connection is opened lazily by
// the first operation and released by Close.
//
// Every statement runs inside the pending transaction. Writes commit before
// the call returns; fetched reads leave the transaction open until the next
// commit or Close. A failed operation rolls the pending transaction back.
type Loader struct {
	mu     sync.Mutex
	config types.LoaderConfig
	logger *slog.Logger
	db     *sql.DB
	tx     *sql.Tx
}

var _ types.BulkLoader = (*Loader)(nil)

// NewLoader validates config and returns an unconnected Loader.
func NewLoader(config types.LoaderConfig) (*Loader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Loader{
		config: config,
		logger: config.GetLogger().With("db", config.DBPath),
	}, nil
}

// WithLoader opens a Loader for config, runs fn, and releases the
// connection. Pending work is committed when fn returns nil and rolled back
// when it returns an error or panics.
func WithLoader(ctx context.Context, config types.LoaderConfig, fn func(*Loader) error) error {
	l, err := NewLoader(config)
	if err != nil {
		return err
	}
	return l.Session(ctx, fn)
}

// Session connects, runs fn, and closes the connection. Pending work is
// committed when fn returns nil and rolled back when it returns an error or
// panics.
func (l *Loader) Session(ctx context.Context, fn func(*Loader) error) (err error) {
	if err := l.Connect(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			l.abort()
			panic(p)
		}
	}()

	if err := fn(l); err != nil {
		l.abort()
		return err
	}
	return l.Close()
}

// abort rolls back pending work and releases the connection, discarding
// errors. Used on failure paths where the original error is returned.
func (l *Loader) abort() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollbackLocked()
	if l.db != nil {
		_ = l.db.Close()
		l.db = nil
	}
	l.logger.Debug("connection released after rollback")
}

// Connect opens the database. It is a no-op when already connected.
func (l *Loader) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connectLocked(ctx)
}

func (l *Loader) connectLocked(ctx context.Context) error {
	if l.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", buildDSN(l.config))
	if err != nil {
		return types.StorageError("open database", err)
	}
	// One connection: an in-memory database lives only as long as its
	// connection, and the pending transaction must see every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return types.StorageError("connect", err)
	}

	l.db = db
	l.logger.Debug("connected", "timeout", l.config.GetTimeout())
	return nil
}

// Close commits pending work and releases the connection. It is a no-op
// when not connected. The connection is released even if the commit fails.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return nil
	}

	commitErr := l.commitLocked()
	closeErr := l.db.Close()
	l.db = nil
	l.logger.Debug("connection closed")

	if commitErr != nil {
		return commitErr
	}
	return types.StorageError("close database", closeErr)
}

// Rollback discards the pending transaction, if any. The connection stays
// open.
func (l *Loader) Rollback() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tx == nil {
		return nil
	}
	err := l.tx.Rollback()
	l.tx = nil
	return types.StorageError("rollback", err)
}

// txLocked connects if needed and returns the pending transaction, starting
// one if there is none. The transaction outlives ctx.
func (l *Loader) txLocked(ctx context.Context) (*sql.Tx, error) {
	if err := l.connectLocked(ctx); err != nil {
		return nil, err
	}
	if l.tx != nil {
		return l.tx, nil
	}
	tx, err := l.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, types.StorageError("begin transaction", err)
	}
	l.tx = tx
	return tx, nil
}

func (l *Loader) commitLocked() error {
	if l.tx == nil {
		return nil
	}
	err := l.tx.Commit()
	l.tx = nil
	return types.StorageError("commit", err)
}

func (l *Loader) rollbackLocked() {
	if l.tx == nil {
		return
	}
	_ = l.tx.Rollback()
	l.tx = nil
}

// buildDSN renders the modernc.org/sqlite connection string. The timeout
// becomes SQLite's busy_timeout.
func buildDSN(config types.LoaderConfig) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.GetTimeout().Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	return config.DBPath + "?" + q.Encode()
}

// newLoadID generates a UUID v7 identifying one bulk load in log output.
func newLoadID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
