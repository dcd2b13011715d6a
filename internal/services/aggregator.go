package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"city-deployer-service/internal/config"
	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/ports"
)

const wikipediaCitation = " (Source: Wikipedia)"

// Aggregator gathers the narrative description and per-category listings
// for a resolved city. Every lookup has fallback content, so the
// returned bundle is always fully populated: exactly
// ListingsPerCategory entries per category and a non-empty narrative.
type Aggregator struct {
	summaries ports.SummaryProvider
	places    ports.PlacesProvider
	pace      ports.Pacer
	memo      *gocache.Cache
	cfg       config.Config
	log       *zap.Logger
}

func NewAggregator(
	summaries ports.SummaryProvider,
	placesProvider ports.PlacesProvider,
	pacer ports.Pacer,
	cfg config.Config,
	log *zap.Logger,
) *Aggregator {
	return &Aggregator{
		summaries: summaries,
		places:    placesProvider,
		pace:      pacer,
		memo:      gocache.New(gocache.NoExpiration, 0),
		cfg:       cfg,
		log:       log,
	}
}

// Aggregate builds the complete ContentBundle for one city. Failures of
// individual lookups degrade to fallback content and never abort the
// other categories.
func (a *Aggregator) Aggregate(ctx context.Context, loc domain.GeoLocation, req domain.CityRequest) domain.ContentBundle {
	log := a.log.With(zap.String("city", req.Name))

	bundle := domain.ContentBundle{
		Location:           loc,
		Narrative:          a.narrative(ctx, req, log),
		ListingsByCategory: make(map[string][]domain.Listing, len(a.cfg.Categories)),
	}

	for _, cat := range a.cfg.Categories {
		bundle.ListingsByCategory[cat.Name] = a.categoryListings(ctx, loc, req, cat, log)
	}

	return bundle
}

// narrative fetches the encyclopedic description, trying query variants
// in order and synthesizing a city-personalized paragraph when none
// passes the quality bar. The source citation is always appended.
func (a *Aggregator) narrative(ctx context.Context, req domain.CityRequest, log *zap.Logger) string {
	if cached, ok := a.memo.Get(req.Key()); ok {
		if text, ok := cached.(string); ok {
			return text
		}
	}

	titles := []string{req.Name}
	if req.Region != "" {
		titles = append(titles, fmt.Sprintf("%s, %s", req.Name, req.Region))
	}

	text := ""
	for _, title := range titles {
		if a.summaries == nil {
			break
		}
		if err := a.pace.Pace(ctx); err != nil {
			log.Warn("pacing interrupted", zap.Error(err))
			break
		}

		summary, err := a.summaries.Summary(ctx, title)
		if err != nil {
			log.Warn("summary lookup degraded", zap.String("title", title), zap.Error(err))
			continue
		}
		if !a.acceptSummary(summary) {
			log.Warn("summary rejected", zap.String("title", title),
				zap.String("type", summary.Type), zap.Int("len", len(summary.Extract)))
			continue
		}

		text = summary.Extract + wikipediaCitation
		break
	}

	if text == "" {
		text = a.fallbackNarrative(req)
		log.Warn("using synthesized narrative fallback")
	}

	a.memo.Set(req.Key(), text, gocache.DefaultExpiration)
	return text
}

func (a *Aggregator) acceptSummary(s ports.PageSummary) bool {
	if len(s.Extract) < a.cfg.MinNarrativeChars {
		return false
	}
	if strings.EqualFold(s.Type, "disambiguation") {
		return false
	}
	if strings.Contains(s.Extract, "may refer to") {
		return false
	}
	return true
}

func (a *Aggregator) fallbackNarrative(req domain.CityRequest) string {
	return fmt.Sprintf("%s is the current focal point of the software development revolution. "+
		"The Titan Software Guild aims to be the center of this movement in the area.%s",
		req.Name, wikipediaCitation)
}

// categoryListings returns exactly ListingsPerCategory entries for the
// category: provider results ordered by proximity, widened once when too
// few are found, padded with deterministic synthetic listings.
func (a *Aggregator) categoryListings(
	ctx context.Context,
	loc domain.GeoLocation,
	req domain.CityRequest,
	cat config.CategorySpec,
	log *zap.Logger,
) []domain.Listing {
	want := a.cfg.ListingsPerCategory
	tag := ports.TagFilter{Key: cat.TagKey, Value: cat.TagValue}

	found := a.query(ctx, domain.BoxAround(loc, a.cfg.BBoxDelta), tag, cat, log)

	if len(found) < want {
		wider := a.query(ctx, domain.BoxAround(loc, a.cfg.WideBBoxDelta), tag, cat, log)
		found = mergeByName(found, wider)
	}

	sortByProximity(found, loc)
	if len(found) > want {
		found = found[:want]
	}

	for i := len(found); i < want; i++ {
		found = append(found, syntheticListing(req, cat, i+1))
	}

	return found
}

func (a *Aggregator) query(
	ctx context.Context,
	box domain.BoundingBox,
	tag ports.TagFilter,
	cat config.CategorySpec,
	log *zap.Logger,
) []domain.Listing {
	if a.places == nil {
		return nil
	}
	if err := a.pace.Pace(ctx); err != nil {
		log.Warn("pacing interrupted", zap.Error(err))
		return nil
	}

	// Fetch extra so deduplication and nameless results do not starve
	// the category.
	raw, err := a.places.FindPlaces(ctx, box, tag, a.cfg.ListingsPerCategory*4)
	if err != nil {
		log.Warn("places lookup degraded",
			zap.String("category", cat.Name), zap.Error(err))
		return nil
	}

	out := make([]domain.Listing, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, p := range raw {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, domain.Listing{
			Name:       name,
			Address:    p.Address,
			Phone:      p.Phone,
			Website:    p.Website,
			Category:   cat.Name,
			Lat:        p.Lat,
			Lon:        p.Lon,
			Positioned: p.Positioned,
		})
	}
	return out
}

func mergeByName(base, extra []domain.Listing) []domain.Listing {
	seen := make(map[string]struct{}, len(base))
	for _, l := range base {
		seen[strings.ToLower(l.Name)] = struct{}{}
	}
	for _, l := range extra {
		key := strings.ToLower(l.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		base = append(base, l)
	}
	return base
}

// sortByProximity orders positioned listings by distance to the city
// center; listings without a position keep provider order at the end.
func sortByProximity(listings []domain.Listing, loc domain.GeoLocation) {
	sort.SliceStable(listings, func(i, j int) bool {
		li, lj := listings[i], listings[j]
		switch {
		case li.Positioned && !lj.Positioned:
			return true
		case !li.Positioned:
			return false
		}
		di := domain.HaversineMeters(loc.Lat, loc.Lon, li.Lat, li.Lon)
		dj := domain.HaversineMeters(loc.Lat, loc.Lon, lj.Lat, lj.Lon)
		return di < dj
	})
}

// syntheticListing builds the deterministic placeholder used when a
// provider cannot fill a category slot. Names are unique per slot.
func syntheticListing(req domain.CityRequest, cat config.CategorySpec, n int) domain.Listing {
	return domain.Listing{
		Name:      fmt.Sprintf("%s %s Pick #%d", req.Name, cat.Display, n),
		Address:   fmt.Sprintf("Central %s", req.Name),
		Category:  cat.Name,
		Synthetic: true,
	}
}
