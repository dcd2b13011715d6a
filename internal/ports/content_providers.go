package ports

import (
	"context"

	"city-deployer-service/internal/domain"
)

// PageSummary is an encyclopedic summary lookup result.
type PageSummary struct {
	Extract string
	Type    string
}

// SummaryProvider fetches a short narrative description for a page title.
type SummaryProvider interface {
	// Summary returns the page summary, or ErrNotFound when no page
	// exists for the title.
	Summary(ctx context.Context, title string) (PageSummary, error)
}

// TagFilter selects places by a key=value tag in the provider's taxonomy.
type TagFilter struct {
	Key   string
	Value string
}

// Place is one raw point of interest returned by a places provider.
type Place struct {
	Name       string
	Address    string
	Phone      string
	Website    string
	Lat        float64
	Lon        float64
	Positioned bool
}

// PlacesProvider lists points of interest within a bounding box.
type PlacesProvider interface {
	FindPlaces(ctx context.Context, box domain.BoundingBox, tag TagFilter, limit int) ([]Place, error)
}
