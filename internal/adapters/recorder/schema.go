package recorder

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the deployer's tables. The statements are kept to
// the portable subset shared by SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRunRecordsQuery := `
	CREATE TABLE IF NOT EXISTS run_records (
		run_id TEXT NOT NULL,
		city TEXT NOT NULL,
		destination TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		display_name TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_run_records_run_id
	ON run_records(run_id);
	`

	statements := []string{
		createRunRecordsQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
