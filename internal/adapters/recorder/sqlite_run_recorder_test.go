package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/platform/db"
)

func newTestRecorder(t *testing.T) *SqliteRunRecorder {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(conn))
	return NewSqliteRunRecorder(conn)
}

func TestRecordAndListRecent(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	records := []domain.RunRecord{
		{RunID: "run-1", City: "Dallas-Texas", Destination: "The-Dallas-Software-Guild",
			Status: domain.StatusSucceeded, CompletedAt: base},
		{RunID: "run-1", City: "Yukon-Oklahoma", Destination: "The-Yukon-Software-Guild",
			Status: domain.StatusFailed, Reason: "503 service unavailable", CompletedAt: base.Add(time.Minute)},
		{RunID: "run-2", City: "*", Status: domain.StatusFatal, Reason: "credential missing",
			CompletedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		require.NoError(t, r.Record(ctx, rec))
	}

	got, err := r.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, "*", got[0].City)
	assert.Equal(t, domain.StatusFatal, got[0].Status)
	assert.Equal(t, "Yukon-Oklahoma", got[1].City)
	assert.Equal(t, "503 service unavailable", got[1].Reason)
	assert.Equal(t, "Dallas-Texas", got[2].City)
	assert.True(t, got[2].CompletedAt.Equal(base))
}

func TestListRecentHonorsLimit(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(ctx, domain.RunRecord{
			RunID:       "run-1",
			City:        "Dallas-Texas",
			Destination: "The-Dallas-Software-Guild",
			Status:      domain.StatusSucceeded,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := r.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRecordRequiresIdentity(t *testing.T) {
	r := newTestRecorder(t)
	assert.Error(t, r.Record(context.Background(), domain.RunRecord{City: "Dallas-Texas"}))
	assert.Error(t, r.Record(context.Background(), domain.RunRecord{RunID: "run-1"}))
}
