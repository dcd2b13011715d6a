package ports

import (
	"context"

	"city-deployer-service/internal/domain"
)

// RunRecorder persists per-city success/failure records.
type RunRecorder interface {
	Record(ctx context.Context, rec domain.RunRecord) error
}

// Pacer enforces a mandatory minimum delay between successive external
// calls. Pacing is a correctness requirement of the shared providers,
// not an optimization.
type Pacer interface {
	Pace(ctx context.Context) error
}
