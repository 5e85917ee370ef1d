// Package sqlitetest opens throwaway in-memory SQLite databases carrying the
// same tables as the MySQL migrations, for repository and handler tests.
package sqlitetest

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

var seq atomic.Int64

var schema = []string{
	`CREATE TABLE users (
        id TEXT PRIMARY KEY,
        primary_email TEXT NOT NULL UNIQUE,
        secondary_email TEXT,
        full_name TEXT NOT NULL DEFAULT '',
        user_name TEXT NOT NULL DEFAULT '',
        is_completed BOOLEAN NOT NULL DEFAULT 0,
        role TEXT NOT NULL DEFAULT 'USER',
        is_deleted BOOLEAN NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    )`,
	`CREATE TABLE auth (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL REFERENCES users(id),
        provider TEXT NOT NULL,
        magic_token TEXT UNIQUE,
        refresh_token TEXT,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        UNIQUE (user_id, provider)
    )`,
	`CREATE TABLE events (
        id TEXT PRIMARY KEY,
        creator_id TEXT NOT NULL REFERENCES users(id),
        name TEXT NOT NULL,
        slug TEXT NOT NULL UNIQUE,
        description TEXT NOT NULL,
        venue TEXT NOT NULL DEFAULT '',
        start_time DATETIME NOT NULL,
        end_time DATETIME NOT NULL,
        capacity INTEGER NOT NULL DEFAULT 0,
        is_cancelled BOOLEAN NOT NULL DEFAULT 0,
        is_deleted BOOLEAN NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    )`,
	`CREATE TABLE cohosts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL REFERENCES users(id),
        event_id TEXT NOT NULL REFERENCES events(id),
        role TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        UNIQUE (user_id, event_id)
    )`,
	`CREATE TABLE attendees (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        event_id TEXT NOT NULL REFERENCES events(id),
        user_id TEXT NOT NULL REFERENCES users(id),
        status TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        UNIQUE (event_id, user_id)
    )`,
}

// Open returns a fresh database that is closed when t finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:rsvp_test_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serializes writers
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("creating schema: %v", err)
		}
	}
	return db
}
