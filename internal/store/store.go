// Package store persists the order aggregate graph in an embedded SQLite
// database. One process owns the database file at a time; concurrency inside
// the process is handled by the connection limit and per-save transactions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row doesn't exist. Callers must
// treat it as distinct from validation and I/O failures.
var ErrNotFound = errors.New("not found")

// sequenceKey is the single row key in order_sequence_state tracking the
// highest identifier ever issued, independent of live rows.
const sequenceKey = "max_order_id"

// Store wraps the SQLite connection and the schema migration state.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and brings its
// schema up to date. Older databases are migrated in place by adding any
// missing columns with safe defaults.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps readers from blocking the writer during saves.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Single-writer model: one connection is all we need, and it keeps
	// SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
