package places

import (
	"context"

	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/ports"
)

// MockPlaces serves queued responses per tag value, for tests. Each call
// for a tag consumes the next queued slice; an exhausted queue repeats
// its last entry. This lets tests script "narrow box, then wide box"
// sequences.
type MockPlaces struct {
	Queue map[string][][]ports.Place
	Err   error
	Calls []ports.TagFilter
	Boxes []domain.BoundingBox
}

func (m *MockPlaces) FindPlaces(
	ctx context.Context,
	box domain.BoundingBox,
	tag ports.TagFilter,
	limit int,
) ([]ports.Place, error) {
	m.Calls = append(m.Calls, tag)
	m.Boxes = append(m.Boxes, box)
	if m.Err != nil {
		return nil, m.Err
	}

	queued := m.Queue[tag.Value]
	if len(queued) == 0 {
		return nil, nil
	}

	next := queued[0]
	if len(queued) > 1 {
		m.Queue[tag.Value] = queued[1:]
	}
	return next, nil
}
