// Package localstore provides the per-device embedded persistence layer:
// one SQLite table per entity kind holding full entity snapshots keyed by id,
// plus the outbox of pending mutations. Writes replace whole rows; there is
// no field-level merge and no local foreign-key enforcement (trip deletion
// cascades explicitly through the domain stores).
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by the per-kind Get methods when no row exists.
var ErrNotFound = errors.New("localstore: not found")

// timeLayout is a fixed-width RFC 3339 form (millisecond precision, UTC).
// Fixed width keeps lexicographic TEXT ordering equal to chronological
// ordering, which the updated_at/created_at sort orders rely on.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Store is the embedded per-device store. All multi-statement write paths
// are serialized with writeMu; the original design got this for free from a
// single-threaded event loop, here it is explicit.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	writeMu sync.Mutex
}

// Open opens (or creates) the SQLite database at path and ensures the
// schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: the device is a single active writer, and it keeps
	// ":memory:" databases from splitting across pool connections in tests.
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, logger: slog.Default()}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for the outbox, which lives in the same
// database file so a queued mutation survives anything the entity row does.
func (s *Store) DB() *sql.DB { return s.db }

// SetLogger replaces the default logger.
func (s *Store) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			destination TEXT NOT NULL,
			start_date  TEXT NOT NULL,
			end_date    TEXT NOT NULL,
			cover_photo TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			user_id     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_updated_at ON trips(updated_at DESC)`,

		`CREATE TABLE IF NOT EXISTS itinerary_items (
			id         TEXT PRIMARY KEY,
			trip_id    TEXT NOT NULL,
			date       TEXT NOT NULL,
			time       TEXT,
			title      TEXT NOT NULL,
			location   TEXT,
			notes      TEXT,
			"order"    INTEGER NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_itinerary_items_trip_order ON itinerary_items(trip_id, "order")`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id         TEXT PRIMARY KEY,
			trip_id    TEXT NOT NULL,
			category   TEXT NOT NULL,
			amount     REAL NOT NULL DEFAULT 0,
			currency   TEXT NOT NULL DEFAULT 'USD',
			note       TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_trip_created ON expenses(trip_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			trip_id    TEXT NOT NULL,
			date       TEXT,
			content    TEXT NOT NULL,
			created_at TEXT,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_trip_updated ON notes(trip_id, updated_at DESC)`,

		`CREATE TABLE IF NOT EXISTS _sync_outbox (
			id        TEXT PRIMARY KEY,
			kind      TEXT NOT NULL CHECK (kind IN ('trip','itinerary','expense','note')),
			action    TEXT NOT NULL CHECK (action IN ('create','update','delete')),
			payload   TEXT NOT NULL,
			queued_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_outbox_queued_at ON _sync_outbox(queued_at)`,
	}

	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// fmtTime renders t for storage, or "" for the zero time.
func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// parseTime is the inverse of fmtTime; bad or empty input maps to zero.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullable maps "" to NULL for optional TEXT columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func fromNull(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
