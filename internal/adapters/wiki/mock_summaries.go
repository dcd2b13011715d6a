package wiki

import (
	"context"
	"fmt"

	"city-deployer-service/internal/ports"
)

// MockSummaries returns canned page summaries per title, for tests.
// Titles without an entry behave like missing pages.
type MockSummaries struct {
	Pages  map[string]ports.PageSummary
	Err    error
	Titles []string
}

func (m *MockSummaries) Summary(ctx context.Context, title string) (ports.PageSummary, error) {
	m.Titles = append(m.Titles, title)
	if m.Err != nil {
		return ports.PageSummary{}, m.Err
	}
	s, ok := m.Pages[title]
	if !ok {
		return ports.PageSummary{}, fmt.Errorf("summary %q: %w", title, ports.ErrNotFound)
	}
	return s, nil
}
