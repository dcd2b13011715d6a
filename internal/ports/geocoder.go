package ports

import (
	"context"

	"city-deployer-service/internal/domain"
)

// GeoCandidate is one geocoding result.
type GeoCandidate struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Geocoder resolves a free-text query to an ordered list of candidates.
type Geocoder interface {
	// Search returns up to limit candidates, best match first.
	Search(ctx context.Context, query string, limit int) ([]GeoCandidate, error)
}

// GeocodeCache persists exact-match resolutions keyed by query string,
// so reruns skip the provider call.
type GeocodeCache interface {
	Get(ctx context.Context, query string) (domain.GeoLocation, bool, error)
	Put(ctx context.Context, query string, loc domain.GeoLocation) error
}
