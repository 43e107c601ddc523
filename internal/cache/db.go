// Package cache is the dashboard's local SQLite state: the persisted auth
// session and a rolling window of readings so the chart survives
// restarts. The API client itself stores nothing.
package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database.
type DB struct {
	db *sql.DB
}

// Open creates or opens the database and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			expires INTEGER NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0,
			base_url TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS readings (
			patient_id TEXT NOT NULL,
			ts_unix INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			value REAL NOT NULL,
			value_mgdl REAL NOT NULL DEFAULT 0,
			units INTEGER NOT NULL DEFAULT 0,
			trend_arrow INTEGER NOT NULL DEFAULT 0,
			is_high INTEGER NOT NULL DEFAULT 0,
			is_low INTEGER NOT NULL DEFAULT 0,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (patient_id, ts_unix)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_patient ON readings(patient_id, ts_unix DESC)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
