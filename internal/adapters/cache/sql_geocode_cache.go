package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"city-deployer-service/internal/domain"
)

// SQLGeocodeCache is the Postgres variant of the geocode cache, used
// when the deployer runs against DATABASE_URL instead of a local file.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

func (s *SQLGeocodeCache) Get(ctx context.Context, query string) (domain.GeoLocation, bool, error) {
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
	WHERE query = $1;
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

func (s *SQLGeocodeCache) Put(ctx context.Context, query string, loc domain.GeoLocation) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("insert geocode cache: empty query key")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (query, lat, lon, display_name)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (query) DO UPDATE
	SET lat = EXCLUDED.lat,
	    lon = EXCLUDED.lon,
	    display_name = EXCLUDED.display_name;
	`, query, loc.Lat, loc.Lon, loc.DisplayName)
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}
