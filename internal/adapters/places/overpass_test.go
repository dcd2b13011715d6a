package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/ports"
)

func TestBuildQuery(t *testing.T) {
	box := domain.BoundingBox{South: 32.67, West: -96.89, North: 32.87, East: -96.69}
	query := buildQuery(box, ports.TagFilter{Key: "amenity", Value: "library"}, 12)

	assert.Contains(t, query, "[out:json]")
	assert.Contains(t, query, `node["amenity"="library"](32.670000,-96.890000,32.870000,-96.690000);`)
	assert.Contains(t, query, `way["amenity"="library"](32.670000,-96.890000,32.870000,-96.690000);`)
	assert.Contains(t, query, "out center 12;")
}

func TestFindPlacesParsesElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("data"), `node["amenity"="cafe"]`)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elements": [
			{"lat": 32.78, "lon": -96.79, "tags": {
				"name": "Drip Coffee",
				"addr:housenumber": "401",
				"addr:street": "Main St",
				"addr:city": "Dallas",
				"phone": "+1 214 555 0100",
				"website": "https://drip.example"
			}},
			{"center": {"lat": 32.80, "lon": -96.77}, "tags": {
				"name": "Mudhouse",
				"contact:phone": "+1 214 555 0199"
			}},
			{"tags": {"name": "Unpositioned Kiosk"}}
		]}`))
	}))
	defer srv.Close()

	p, err := NewOverpassProvider("city-deployer/test", time.Second)
	require.NoError(t, err)
	p.baseURL = srv.URL

	box := domain.BoundingBox{South: 32.67, West: -96.89, North: 32.87, East: -96.69}
	got, err := p.FindPlaces(context.Background(), box, ports.TagFilter{Key: "amenity", Value: "cafe"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Drip Coffee", got[0].Name)
	assert.Equal(t, "401, Main St, Dallas", got[0].Address)
	assert.Equal(t, "+1 214 555 0100", got[0].Phone)
	assert.Equal(t, "https://drip.example", got[0].Website)
	assert.True(t, got[0].Positioned)

	// Ways carry coordinates under center, contact:* keys are fallbacks.
	assert.True(t, got[1].Positioned)
	assert.InDelta(t, 32.80, got[1].Lat, 1e-6)
	assert.Equal(t, "+1 214 555 0199", got[1].Phone)

	assert.False(t, got[2].Positioned)
}

func TestFindPlacesRejectsEmptyTag(t *testing.T) {
	p, err := NewOverpassProvider("city-deployer/test", time.Second)
	require.NoError(t, err)

	_, err = p.FindPlaces(context.Background(), domain.BoundingBox{}, ports.TagFilter{}, 10)
	assert.Error(t, err)
}
