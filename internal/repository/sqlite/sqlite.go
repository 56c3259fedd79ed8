// Package sqlite implements the repository interfaces on an embedded SQLite
// database via database/sql and the pure-Go modernc.org/sqlite driver.
//
// All shared mutable state of the application lives here; handlers and
// services hold none. Counter increments are single UPDATE statements so
// read-increment-write never spans round-trips.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during a write; busy_timeout makes a
	// writer wait for the lock instead of failing with SQLITE_BUSY.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	// SQLite has a single writer anyway; one pooled connection serializes
	// concurrent increments at the datastore instead of bouncing them.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup.
//
// Invariants pushed into the schema as a second line of defence behind the
// service-layer validation:
//   - a comment targets exactly one of project/track;
//   - track comments carry a non-negative timestamp, project comments none;
//   - one library entry per (user, project);
//   - payment references are unique across all tips.
func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			github_id     INTEGER UNIQUE,
			email         TEXT UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			display_name  TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id                TEXT PRIMARY KEY,
			creator_id        TEXT NOT NULL REFERENCES users(id),
			title             TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			sharing_enabled   INTEGER NOT NULL DEFAULT 1,
			share_token       TEXT NOT NULL UNIQUE,
			play_count        INTEGER NOT NULL DEFAULT 0,
			share_count       INTEGER NOT NULL DEFAULT 0,
			library_add_count INTEGER NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_creator_id ON projects(creator_id)`,

		`CREATE TABLE IF NOT EXISTS tracks (
			id               TEXT PRIMARY KEY,
			project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			title            TEXT NOT NULL,
			duration_seconds REAL NOT NULL DEFAULT 0,
			position         INTEGER NOT NULL DEFAULT 0,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_project_id ON tracks(project_id)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL REFERENCES users(id),
			project_id        TEXT REFERENCES projects(id) ON DELETE CASCADE,
			track_id          TEXT REFERENCES tracks(id) ON DELETE CASCADE,
			timestamp_seconds REAL,
			content           TEXT NOT NULL,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK ((project_id IS NULL) <> (track_id IS NULL)),
			CHECK (
				(track_id IS NULL AND timestamp_seconds IS NULL)
				OR (track_id IS NOT NULL AND timestamp_seconds >= 0)
			)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_project_id ON comments(project_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_track_id ON comments(track_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS library_entries (
			user_id    TEXT NOT NULL REFERENCES users(id),
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			pinned     INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, project_id)
		)`,

		`CREATE TABLE IF NOT EXISTS tips (
			id                TEXT PRIMARY KEY,
			creator_id        TEXT NOT NULL REFERENCES users(id),
			amount            INTEGER NOT NULL,
			currency          TEXT NOT NULL,
			message           TEXT NOT NULL DEFAULT '',
			tipper_username   TEXT NOT NULL DEFAULT '',
			payment_reference TEXT NOT NULL UNIQUE,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tips_creator_id ON tips(creator_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver surfaces constraint errors as formatted messages, so
// we match on the stable "UNIQUE constraint failed" prefix SQLite emits.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
