package geocode

import (
	"context"

	"city-deployer-service/internal/ports"
)

// MockGeocoder returns canned candidates per query, for tests.
type MockGeocoder struct {
	Candidates map[string][]ports.GeoCandidate
	Err        error
	Queries    []string
}

func (m *MockGeocoder) Search(ctx context.Context, query string, limit int) ([]ports.GeoCandidate, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Candidates[query], nil
}
