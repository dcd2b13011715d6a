package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"city-deployer-service/internal/domain"
)

// SqliteRunRecorder persists per-city run records in a local SQLite
// database.
type SqliteRunRecorder struct {
	DB *sql.DB
}

func NewSqliteRunRecorder(db *sql.DB) *SqliteRunRecorder {
	return &SqliteRunRecorder{DB: db}
}

// Record appends one per-city outcome.
func (s *SqliteRunRecorder) Record(ctx context.Context, rec domain.RunRecord) error {
	if s.DB == nil {
		return errors.New("run recorder: db is nil")
	}
	if rec.RunID == "" || rec.City == "" {
		return errors.New("run recorder: run id and city must be non-empty")
	}

	completed := rec.CompletedAt
	if completed.IsZero() {
		completed = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO run_records (
		run_id,
		city,
		destination,
		status,
		reason,
		completed_at
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`, rec.RunID, rec.City, rec.Destination, rec.Status, rec.Reason,
		completed.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record run city=%q: %w", rec.City, err)
	}

	return nil
}

// ListRecent returns the most recent records, newest first.
func (s *SqliteRunRecorder) ListRecent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.DB == nil {
		return nil, errors.New("run recorder: db is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT run_id, city, destination, status, reason, completed_at
	FROM run_records
	ORDER BY completed_at DESC
	LIMIT ?;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list run records: query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.RunRecord, error) {
	var out []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var completed string
		if err := rows.Scan(&rec.RunID, &rec.City, &rec.Destination,
			&rec.Status, &rec.Reason, &completed); err != nil {
			return nil, fmt.Errorf("list run records: scan row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, completed); err == nil {
			rec.CompletedAt = t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list run records: row iteration: %w", err)
	}
	return out, nil
}
