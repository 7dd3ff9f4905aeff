// Package store owns the mirror schema, its migrations, FTS5 synchronization
// and the typed CRUD operations over every mirrored entity (Component A and
// Component C of the specification).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kestrelvault/mirror/internal/logging"
	_ "modernc.org/sqlite"
)

// Connection pool tuning. SQLite in WAL mode only supports one writer at a
// time, so a large pool just adds lock contention; kept modest like the
// teacher's mail store.
const (
	MaxOpenConns = 8
	MaxIdleConns = 4

	// CheckpointInterval bounds how large the WAL sidecar is allowed to grow
	// between passive checkpoints.
	CheckpointInterval = 5 * time.Minute

	// BusyTimeoutMillis satisfies spec.md §4.A's "non-trivial busy timeout
	// (≥5 s)" requirement with headroom.
	BusyTimeoutMillis = 30000
)

// DB wraps a single mirror database (either the mail.db or calendar.db
// half of the vault, per spec.md §6's on-disk layout).
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the SQLite file at path with WAL journalling and a
// busy timeout, then applies every pending migration in order. Returns
// SchemaError{Open|Migrate} on failure; a nil error guarantees the schema is
// at the latest version in migrations.
func Open(path string, migrations []Migration) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &SchemaError{Kind: SchemaOpen, Cause: fmt.Errorf("create database directory: %w", err)}
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		path, BusyTimeoutMillis,
	)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &SchemaError{Kind: SchemaOpen, Cause: err}
	}

	sqlDB.SetMaxOpenConns(MaxOpenConns)
	sqlDB.SetMaxIdleConns(MaxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, &SchemaError{Kind: SchemaOpen, Cause: err}
	}

	if err := os.Chmod(path, 0600); err != nil {
		sqlDB.Close()
		return nil, &SchemaError{Kind: SchemaOpen, Cause: err}
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.migrate(migrations); err != nil {
		sqlDB.Close()
		return nil, &SchemaError{Kind: SchemaMigrate, Cause: err}
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Checkpoint merges the write-ahead log back into the main file. PASSIVE
// mode checkpoints as much as possible without blocking other connections.
func (db *DB) Checkpoint() error {
	if _, err := db.Exec("PRAGMA wal_checkpoint(PASSIVE)"); err != nil {
		return fmt.Errorf("checkpoint WAL: %w", err)
	}
	return nil
}

// StartCheckpointRoutine runs Checkpoint on a timer until ctx is cancelled.
// It blocks, so the caller runs it in its own goroutine; the Daemon
// Controller does not start it.
func (db *DB) StartCheckpointRoutine(ctx context.Context) {
	log := logging.WithComponent("store")
	ticker := time.NewTicker(CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := db.Checkpoint(); err != nil {
				log.Error().Err(err).Msg("periodic WAL checkpoint failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// classifySQLiteErr maps a raw database/sql error into a StoreError kind.
// modernc.org/sqlite surfaces driver errors whose text carries the SQLite
// result code name; string matching is what the teacher's own call sites
// rely on via aerion's Busy-retry handling, since the driver does not export
// typed result codes in a way this module depends on.
func classifySQLiteErr(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return &StoreError{Kind: ErrNotFound, Cause: err}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "busy"):
		return &StoreError{Kind: ErrBusy, Cause: err}
	case strings.Contains(msg, "malformed"), strings.Contains(msg, "corrupt"):
		return &StoreError{Kind: ErrCorrupt, Cause: err}
	case strings.Contains(msg, "constraint"):
		return &StoreError{Kind: ErrConstraint, Cause: err}
	default:
		return &StoreError{Kind: ErrIO, Cause: err}
	}
}
