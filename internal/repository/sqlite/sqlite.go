// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without a C toolchain. The driver registers itself with database/sql under
// the name "sqlite".
//
// Pragmas are passed in the DSN rather than executed once after opening:
// database/sql keeps a pool, and a PRAGMA only applies to the connection it
// ran on. foreign_keys must be on for every connection or trip deletes would
// leave orphaned schedules, packing items, tags and memberships behind.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface in internal/repository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
//   - "data/trips.db" → file-based database
//   - ":memory:"      → in-memory database, used by tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database.
	// Pin the pool to one connection so all callers see the same data.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dbPath != ":memory:" {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	return dbPath + sep + pragmas
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. Every statement is idempotent so it is safe to
// run on each start.
func (db *DB) migrate(ctx context.Context) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id         TEXT PRIMARY KEY,
				username   TEXT NOT NULL UNIQUE,
				password   TEXT NOT NULL DEFAULT '',
				email      TEXT NOT NULL UNIQUE,
				name       TEXT NOT NULL DEFAULT '',
				github_id  INTEGER UNIQUE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"trips", `
			CREATE TABLE IF NOT EXISTS trips (
				id            TEXT PRIMARY KEY,
				owner_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				name          TEXT NOT NULL,
				destination   TEXT NOT NULL,
				start_date    TEXT NOT NULL,
				end_date      TEXT NOT NULL,
				image_url     TEXT,
				description   TEXT,
				is_shared     INTEGER NOT NULL DEFAULT 0,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_trips_owner ON trips(owner_user_id);`},
		{"trip_members", `
			CREATE TABLE IF NOT EXISTS trip_members (
				id         TEXT PRIMARY KEY,
				trip_id    TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				role       TEXT NOT NULL CHECK (role IN ('viewer', 'editor', 'owner')),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (trip_id, user_id)
			);
			CREATE INDEX IF NOT EXISTS idx_trip_members_user ON trip_members(user_id);`},
		{"schedules", `
			CREATE TABLE IF NOT EXISTS schedules (
				id          TEXT PRIMARY KEY,
				trip_id     TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
				day         TEXT NOT NULL,
				time        TEXT,
				location    TEXT,
				description TEXT,
				title       TEXT NOT NULL,
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_schedules_trip ON schedules(trip_id);`},
		{"packing_categories", `
			CREATE TABLE IF NOT EXISTS packing_categories (
				id    TEXT PRIMARY KEY,
				name  TEXT NOT NULL,
				color TEXT NOT NULL DEFAULT ''
			);`},
		{"packing_items", `
			CREATE TABLE IF NOT EXISTS packing_items (
				id          TEXT PRIMARY KEY,
				trip_id     TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
				category_id TEXT REFERENCES packing_categories(id) ON DELETE SET NULL,
				name        TEXT NOT NULL,
				quantity    INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
				is_packed   INTEGER NOT NULL DEFAULT 0,
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_packing_items_trip ON packing_items(trip_id);`},
		{"trip_tags", `
			CREATE TABLE IF NOT EXISTS trip_tags (
				id      TEXT PRIMARY KEY,
				trip_id TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
				name    TEXT NOT NULL,
				color   TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_trip_tags_trip ON trip_tags(trip_id);`},
		// fetched_at is unix nanoseconds so "newest first" is a numeric sort.
		{"weather_cache", `
			CREATE TABLE IF NOT EXISTS weather_cache (
				id         TEXT PRIMARY KEY,
				location   TEXT NOT NULL,
				payload    TEXT NOT NULL,
				fetched_at INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_weather_cache_location ON weather_cache(location, fetched_at);`},
	}

	for _, step := range steps {
		if _, err := db.conn.ExecContext(ctx, step.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}

	if err := db.seedPackingCategories(ctx); err != nil {
		return fmt.Errorf("seeding packing categories: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// checkAffected turns a zero-row UPDATE or DELETE into a NotFound error.
func checkAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
