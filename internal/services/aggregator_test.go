package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"city-deployer-service/internal/adapters/places"
	"city-deployer-service/internal/adapters/wiki"
	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/platform/pace"
	"city-deployer-service/internal/ports"
)

const dallasExtract = "Dallas is the third-most populous city in Texas and a major " +
	"cultural and commercial center of the southern United States."

func dallasLocation() domain.GeoLocation {
	return domain.GeoLocation{Lat: 32.7767, Lon: -96.7970, Source: domain.SourceExactMatch}
}

func TestAggregateFullBundle(t *testing.T) {
	cfg := testConfig()

	summaries := &wiki.MockSummaries{
		Pages: map[string]ports.PageSummary{
			"Dallas": {Extract: dallasExtract, Type: "standard"},
		},
	}
	poi := &places.MockPlaces{Queue: map[string][][]ports.Place{
		"library":     {{{Name: "Central Library", Positioned: true, Lat: 32.78, Lon: -96.79}, {Name: "Oak Branch"}, {Name: "Lakewood Branch"}}},
		"bar":         {{{Name: "Bar One"}, {Name: "Bar Two"}, {Name: "Bar Three"}, {Name: "Bar Four"}}},
		"restaurant":  {{{Name: "Diner"}, {Name: "Bistro"}, {Name: "Grill"}}},
		"hairdresser": {{{Name: "Clippers"}, {Name: "Fade House"}, {Name: "Shear Luck"}}},
		"cafe":        {{{Name: "Drip"}, {Name: "Mudhouse"}, {Name: "Press"}}},
		"attraction":  {{{Name: "Museum"}, {Name: "Aquarium"}, {Name: "Arboretum"}}},
	}}

	a := NewAggregator(summaries, poi, pace.Nop{}, cfg, zap.NewNop())
	req, _ := domain.ParseCityRequest("Dallas-Texas", "Oklahoma")

	bundle := a.Aggregate(context.Background(), dallasLocation(), req)

	assert.Contains(t, bundle.Narrative, "Dallas")
	assert.Contains(t, bundle.Narrative, "(Source: Wikipedia)")

	require.Len(t, bundle.ListingsByCategory, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		listings := bundle.ListingsByCategory[cat.Name]
		assert.Len(t, listings, cfg.ListingsPerCategory, "category %s", cat.Name)
	}

	// A full narrow-box result must not trigger the widened retry.
	assert.Len(t, poi.Calls, len(cfg.Categories))
}

func TestAggregatePadsWithSyntheticListings(t *testing.T) {
	cfg := testConfig()

	// One real library; the widened retry yields nothing new.
	poi := &places.MockPlaces{Queue: map[string][][]ports.Place{
		"library": {
			{{Name: "Smallville Public Library", Positioned: true, Lat: 39.8, Lon: -98.6}},
			{{Name: "Smallville Public Library", Positioned: true, Lat: 39.8, Lon: -98.6}},
		},
	}}
	summaries := &wiki.MockSummaries{}

	a := NewAggregator(summaries, poi, pace.Nop{}, cfg, zap.NewNop())
	req, _ := domain.ParseCityRequest("Smallville-Nowhere", "Oklahoma")

	bundle := a.Aggregate(context.Background(), dallasLocation(), req)

	libraries := bundle.ListingsByCategory["libraries"]
	require.Len(t, libraries, 3)
	assert.Equal(t, "Smallville Public Library", libraries[0].Name)
	assert.False(t, libraries[0].Synthetic)
	assert.True(t, libraries[1].Synthetic)
	assert.True(t, libraries[2].Synthetic)
	assert.NotEqual(t, libraries[1].Name, libraries[2].Name, "synthetic names must be unique")
	assert.Contains(t, libraries[1].Name, "Smallville")
	assert.Contains(t, libraries[1].Name, "Library")
}

func TestAggregateWidensBoxOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Categories = cfg.Categories[:1] // libraries only

	poi := &places.MockPlaces{Queue: map[string][][]ports.Place{
		"library": {
			{{Name: "Only Branch"}},
			{{Name: "Only Branch"}, {Name: "Far Branch"}, {Name: "Farther Branch"}},
		},
	}}

	a := NewAggregator(&wiki.MockSummaries{}, poi, pace.Nop{}, cfg, zap.NewNop())
	req, _ := domain.ParseCityRequest("Yukon-Oklahoma", "Oklahoma")

	bundle := a.Aggregate(context.Background(), dallasLocation(), req)

	require.Len(t, poi.Boxes, 2, "short result must widen exactly once")
	assert.Greater(t, poi.Boxes[1].North-poi.Boxes[1].South, poi.Boxes[0].North-poi.Boxes[0].South)

	libraries := bundle.ListingsByCategory["libraries"]
	require.Len(t, libraries, 3)
	for _, l := range libraries {
		assert.False(t, l.Synthetic)
	}
}

func TestAggregateNarrativeFallsBackOnDisambiguation(t *testing.T) {
	cfg := testConfig()
	cfg.Categories = nil

	summaries := &wiki.MockSummaries{
		Pages: map[string]ports.PageSummary{
			"Smallville": {
				Extract: strings.Repeat("Smallville may refer to several places. ", 4),
				Type:    "disambiguation",
			},
		},
	}

	a := NewAggregator(summaries, &places.MockPlaces{}, pace.Nop{}, cfg, zap.NewNop())
	req, _ := domain.ParseCityRequest("Smallville-Nowhere", "Oklahoma")

	bundle := a.Aggregate(context.Background(), dallasLocation(), req)

	assert.Contains(t, bundle.Narrative, "Smallville")
	assert.Contains(t, bundle.Narrative, "(Source: Wikipedia)")
	assert.NotContains(t, bundle.Narrative, "may refer to")
	// Both query variants were tried before synthesizing.
	assert.Equal(t, []string{"Smallville", "Smallville, Nowhere"}, summaries.Titles)
}

func TestAggregateSurvivesProviderOutage(t *testing.T) {
	cfg := testConfig()

	poi := &places.MockPlaces{Err: errors.New("overpass 504")}
	summaries := &wiki.MockSummaries{Err: errors.New("wikipedia down")}

	a := NewAggregator(summaries, poi, pace.Nop{}, cfg, zap.NewNop())
	req, _ := domain.ParseCityRequest("Yukon-Oklahoma", "Oklahoma")

	bundle := a.Aggregate(context.Background(), dallasLocation(), req)

	assert.NotEmpty(t, bundle.Narrative)
	for _, cat := range cfg.Categories {
		listings := bundle.ListingsByCategory[cat.Name]
		require.Len(t, listings, cfg.ListingsPerCategory)
		for _, l := range listings {
			assert.True(t, l.Synthetic)
		}
	}
}

func TestAggregateOrdersByProximity(t *testing.T) {
	cfg := testConfig()
	cfg.Categories = cfg.Categories[:1]

	center := domain.GeoLocation{Lat: 35.0, Lon: -97.0}
	poi := &places.MockPlaces{Queue: map[string][][]ports.Place{
		"library": {{
			{Name: "Far", Positioned: true, Lat: 35.2, Lon: -97.2},
			{Name: "Near", Positioned: true, Lat: 35.01, Lon: -97.01},
			{Name: "Mid", Positioned: true, Lat: 35.1, Lon: -97.1},
		}},
	}}

	a := NewAggregator(&wiki.MockSummaries{}, poi, pace.Nop{}, cfg, zap.NewNop())
	req, _ := domain.ParseCityRequest("Norman-Oklahoma", "Oklahoma")

	bundle := a.Aggregate(context.Background(), center, req)

	libraries := bundle.ListingsByCategory["libraries"]
	require.Len(t, libraries, 3)
	assert.Equal(t, "Near", libraries[0].Name)
	assert.Equal(t, "Mid", libraries[1].Name)
	assert.Equal(t, "Far", libraries[2].Name)
}
