package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"city-deployer-service/internal/config"
	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/ports"
)

// Resolver turns a CityRequest into a GeoLocation through an ordered
// fallback chain: pinned city table, geocoding provider, region
// centroid, fixed default. It never fails; every tier down to the fixed
// default yields a usable coordinate.
type Resolver struct {
	geocoder ports.Geocoder
	cache    ports.GeocodeCache
	pace     ports.Pacer
	cfg      config.Config
	log      *zap.Logger
}

func NewResolver(
	geocoder ports.Geocoder,
	cache ports.GeocodeCache,
	pacer ports.Pacer,
	cfg config.Config,
	log *zap.Logger,
) *Resolver {
	return &Resolver{geocoder: geocoder, cache: cache, pace: pacer, cfg: cfg, log: log}
}

// Resolve returns a populated GeoLocation for the request. Provider
// failures, rate limiting, and empty result sets all advance the chain;
// no error ever propagates to the caller.
func (r *Resolver) Resolve(ctx context.Context, req domain.CityRequest) domain.GeoLocation {
	log := r.log.With(zap.String("city", req.Name), zap.String("region", req.Region))

	if pinned, ok := r.cfg.PinnedCities[strings.ToLower(req.Name)]; ok {
		log.Info("resolved from pinned city table",
			zap.String("source", string(domain.SourceExactMatch)))
		return domain.GeoLocation{
			Lat:         pinned.Lat,
			Lon:         pinned.Lon,
			DisplayName: pinned.DisplayName,
			Source:      domain.SourceExactMatch,
		}
	}

	query := r.buildQuery(req)

	if r.cache != nil {
		loc, hit, err := r.cache.Get(ctx, query)
		if err != nil {
			log.Warn("geocode cache read failed", zap.Error(err))
		} else if hit {
			log.Info("resolved from geocode cache",
				zap.String("source", string(loc.Source)))
			return loc
		}
	}

	if loc, ok := r.geocode(ctx, query, log); ok {
		return loc
	}

	if centroid, ok := r.cfg.RegionCentroids[strings.ToLower(req.Region)]; ok {
		log.Info("resolved from region centroid",
			zap.String("source", string(domain.SourceRegionCentroid)))
		return domain.GeoLocation{
			Lat:         centroid.Lat,
			Lon:         centroid.Lon,
			DisplayName: fmt.Sprintf("%s, %s", req.Name, req.Region),
			Source:      domain.SourceRegionCentroid,
		}
	}

	log.Info("resolved to fixed default coordinate",
		zap.String("source", string(domain.SourceFixedDefault)))
	return domain.GeoLocation{
		Lat:         r.cfg.DefaultLat,
		Lon:         r.cfg.DefaultLon,
		DisplayName: r.cfg.DefaultName,
		Source:      domain.SourceFixedDefault,
	}
}

func (r *Resolver) geocode(ctx context.Context, query string, log *zap.Logger) (domain.GeoLocation, bool) {
	if r.geocoder == nil {
		return domain.GeoLocation{}, false
	}

	if err := r.pace.Pace(ctx); err != nil {
		log.Warn("pacing interrupted", zap.Error(err))
		return domain.GeoLocation{}, false
	}

	candidates, err := r.geocoder.Search(ctx, query, 5)
	if err != nil {
		log.Warn("geocoding provider unavailable", zap.String("query", query), zap.Error(err))
		return domain.GeoLocation{}, false
	}
	if len(candidates) == 0 {
		log.Warn("geocoding returned zero results", zap.String("query", query))
		return domain.GeoLocation{}, false
	}

	first := candidates[0]
	loc := domain.GeoLocation{
		Lat:         first.Lat,
		Lon:         first.Lon,
		DisplayName: first.DisplayName,
		Source:      domain.SourceExactMatch,
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, query, loc); err != nil {
			log.Warn("geocode cache write failed", zap.Error(err))
		}
	}

	log.Info("resolved from geocoding provider",
		zap.String("source", string(domain.SourceExactMatch)),
		zap.String("display_name", loc.DisplayName))
	return loc, true
}

// buildQuery renders the provider query, omitting the region when the
// request has none.
func (r *Resolver) buildQuery(req domain.CityRequest) string {
	if req.Region == "" {
		return fmt.Sprintf("%s, %s", req.Name, r.cfg.Country)
	}
	return fmt.Sprintf("%s, %s, %s", req.Name, req.Region, r.cfg.Country)
}
