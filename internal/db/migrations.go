package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL migration statements.
// Each entry is applied once in order. New migrations are appended at the end.
var migrations = []string{
	// Memos keep their queryable columns alongside the full JSON record.
	`CREATE TABLE IF NOT EXISTS memos (
		id               TEXT PRIMARY KEY,
		memo_type        TEXT NOT NULL,
		title            TEXT NOT NULL,
		genre            TEXT NOT NULL DEFAULT '',
		importance       TEXT NOT NULL DEFAULT '',
		completion_state TEXT NOT NULL DEFAULT 'not_started',
		deadline         DATETIME,
		data             TEXT NOT NULL,
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS activity (
		id         TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		memo_id    TEXT NOT NULL REFERENCES memos(id) ON DELETE CASCADE,
		kind       TEXT NOT NULL,
		minutes    INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_memos_type      ON memos(memo_type)`,
	`CREATE INDEX IF NOT EXISTS idx_memos_state     ON memos(completion_state)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_memo   ON activity(memo_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// applyMigrations runs any migrations that have not yet been applied.
func applyMigrations(conn *sql.DB) error {
	// Ensure the migration tracking table exists first.
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmt := range migrations {
		var count int
		row := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, i)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", i, err)
		}
		if count > 0 {
			continue
		}

		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}

		if _, err := conn.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, i); err != nil {
			return fmt.Errorf("record migration %d: %w", i, err)
		}
	}

	return nil
}
