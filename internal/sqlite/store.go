// Package sqlite wraps the SQLite connection used by the Larder engine:
// lifecycle, pragmas, schema introspection, savepoint checkpoints, and the
// criteria-to-predicate translator.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "larder.db"

// Store owns the single logical SQLite connection. Savepoint checkpoints are
// not thread-safe across interleaved callers; the engine serializes access.
type Store struct {
	db *sql.DB

	// spCounter numbers savepoints so nested checkpoints never collide.
	spCounter atomic.Uint64
}

// Open creates the data directory if needed, opens the database file, and
// applies connection pragmas: WAL journaling and foreign-key enforcement.
// The pool is pinned to one connection so savepoints nest on a single
// checkpoint stack.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the connection. Safe to call once.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for row reads and writes.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TableExists reports whether a table of the given name is present.
func (s *Store) TableExists(name string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return true, nil
}
