package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"city-deployer-service/internal/domain"
)

// SQLRunRecorder is the Postgres variant of the run recorder.
type SQLRunRecorder struct {
	DB *sql.DB
}

func NewSQLRunRecorder(db *sql.DB) *SQLRunRecorder {
	return &SQLRunRecorder{DB: db}
}

func (s *SQLRunRecorder) Record(ctx context.Context, rec domain.RunRecord) error {
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
	INSERT INTO run_records (run_id, city, destination, status, reason, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`, rec.RunID, rec.City, rec.Destination, rec.Status, rec.Reason,
		completed.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record run city=%q: %w", rec.City, err)
	}

	return nil
}

func (s *SQLRunRecorder) ListRecent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
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
	LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list run records: query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}
