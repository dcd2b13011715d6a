package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"city-deployer-service/internal/domain"
)

// SqliteGeocodeCache persists exact-match geocoding results keyed by the
// query string sent to the provider. Keys are expected to be consistent
// (e.g., normalized) by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Get fetches a cached resolution for the query, reporting a miss with
// the second return value.
func (s *SqliteGeocodeCache) Get(ctx context.Context, query string) (domain.GeoLocation, bool, error) {
	if s.DB == nil {
		return domain.GeoLocation{}, false, errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.GeoLocation{}, false, nil
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT lat, lon, display_name
	FROM geocode_cache
	WHERE query = ?;
	`, query)

	var lat, lon float64
	var display string
	if err := row.Scan(&lat, &lon, &display); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.GeoLocation{}, false, nil
		}
		return domain.GeoLocation{}, false, fmt.Errorf("get geocode cache: scan row: %w", err)
	}

	return domain.GeoLocation{
		Lat:         lat,
		Lon:         lon,
		DisplayName: display,
		Source:      domain.SourceExactMatch,
	}, true, nil
}

// Put stores a query -> location mapping.
func (s *SqliteGeocodeCache) Put(ctx context.Context, query string, loc domain.GeoLocation) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("insert geocode cache: empty query key")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (
		query,
		lat,
		lon,
		display_name
	)
	VALUES (?, ?, ?, ?);
	`, query, loc.Lat, loc.Lon, loc.DisplayName)
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}
