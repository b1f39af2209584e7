package storage

import (
	"fmt"
)

type migration struct {
	name string
	sql  string
}

// Schema changes append here; applied ones never change.
var migrations = []migration{
	{
		name: "001_schedule_archive",
		sql: `
			CREATE TABLE IF NOT EXISTS schedule_archive (
			    date TEXT PRIMARY KEY,
			    document TEXT NOT NULL,
			    slot_count INTEGER NOT NULL DEFAULT 0,
			    archived_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		name: "002_narration_log",
		sql: `
			CREATE TABLE IF NOT EXISTS narration_log (
			    id INTEGER PRIMARY KEY AUTOINCREMENT,
			    date TEXT NOT NULL,
			    time TEXT NOT NULL,
			    kind TEXT NOT NULL,
			    slot_id TEXT,
			    task TEXT,
			    lines TEXT NOT NULL,
			    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_narration_log_date ON narration_log(date);
		`,
	},
}

// Migrate runs all pending migrations
func (db *DB) Migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}
		if err := db.applyMigration(m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

func (db *DB) getAppliedMigrations() (map[string]bool, error) {
	rows, err := db.conn.Query("SELECT name FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}

	return applied, rows.Err()
}

func (db *DB) applyMigration(m migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(m.sql); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO _migrations (name) VALUES (?)", m.name); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
