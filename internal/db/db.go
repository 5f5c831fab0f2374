// Package db opens the SQLite task database and keeps its schema current.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB is an open task database holding memos, routine state and activity.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the task database at path, creating it and its directory on
// first use, and brings the schema up to date. Errors name the database path.
func Open(path string) (*DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("task database %q: resolve path: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("task database %s: create directory: %w", abs, err)
	}

	// Activity rows cascade on memo delete, so foreign keys must be on.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", abs)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("task database %s: open: %w", abs, err)
	}
	conn.SetMaxOpenConns(1)

	if err := applyMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("task database %s: migrate: %w", abs, err)
	}
	return &DB{conn: conn, path: abs}, nil
}

// Conn returns the underlying *sql.DB for use by the store.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Path is the absolute location of the database file.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Ping checks the connection is live.
func (d *DB) Ping() error {
	return d.conn.Ping()
}
