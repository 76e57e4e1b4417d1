// Package sqlite implements the repository interfaces using SQLite as
// the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the binary as a
// single file. No separate database server to install or manage, which
// is exactly right for a single-user tracker. Tests use ":memory:" for
// a throwaway in-memory database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go
// translation of SQLite — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver's init() registers itself with
	// database/sql under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces. Wrapping lets us attach methods and own the lifecycle
// (New creates it, Close destroys it).
type DB struct {
	conn *sql.DB
}

// New opens a SQLite database at dbPath and prepares the schema.
//
// dbPath examples:
//   - "data/jobtrack.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// PRAGMAs apply per connection, and a ":memory:" database exists per
	// connection too — a single pooled connection keeps both coherent.
	// SQLite serializes writers anyway, so this costs nothing here.
	conn.SetMaxOpenConns(1)

	// sql.Open doesn't connect — Ping forces the first connection so a
	// bad path or permissions problem surfaces here, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We want the
	// job_applications.user_id → users.id reference enforced.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer Close()
// wherever New() is called so the WAL is flushed on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema idempotently at startup.
//
// The tracker started life with a bare (company, role, status,
// applied_date, notes) table; the owner column and the extra free-text
// columns arrived later. We keep the same shape here: a base CREATE
// TABLE plus idempotent ALTERs, so an existing database file from any
// earlier version upgrades in place. CREATE TABLE IF NOT EXISTS is safe
// to run every start; a migrations framework would be overkill for two
// tables.
func (db *DB) migrate() error {
	// users must exist before job_applications gains its foreign key.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS job_applications (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			company      TEXT NOT NULL,
			role         TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'Applied',
			applied_date DATETIME NOT NULL,
			notes        TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_job_applications_applied_date
			ON job_applications(applied_date);
	`)
	if err != nil {
		return fmt.Errorf("creating job_applications table: %w", err)
	}

	// Later columns, added idempotently (ALTER TABLE errors if the
	// column exists, so we check pragma_table_info first).
	for _, col := range []struct {
		name, definition string
	}{
		{"user_id", "TEXT REFERENCES users(id)"},
		{"location", "TEXT NOT NULL DEFAULT ''"},
		{"source", "TEXT NOT NULL DEFAULT ''"},
		{"job_link", "TEXT NOT NULL DEFAULT ''"},
	} {
		if err := db.addColumnIfNotExists("job_applications", col.name, col.definition); err != nil {
			return fmt.Errorf("adding %s to job_applications: %w", col.name, err)
		}
	}

	_, err = db.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_job_applications_user_id
			ON job_applications(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating job_applications user_id index: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't
// already exist, making ALTER TABLE migrations safe to run repeatedly.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil // column already exists
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
