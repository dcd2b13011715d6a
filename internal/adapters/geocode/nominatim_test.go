package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNominatimGeocoderRequiresUserAgent(t *testing.T) {
	_, err := NewNominatimGeocoder("", time.Second)
	assert.Error(t, err)
}

func TestNominatimSearchParsesCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "Dallas, Texas, USA", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "city-deployer/test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat": "32.7767", "lon": "-96.7970", "display_name": "Dallas, Dallas County, Texas, USA"},
			{"lat": "not-a-number", "lon": "0", "display_name": "garbage row"},
			{"lat": "1.0", "lon": "1.0", "display_name": "Dallas, Scotland"}
		]`))
	}))
	defer srv.Close()

	g, err := NewNominatimGeocoder("city-deployer/test", time.Second)
	require.NoError(t, err)
	g.baseURL = srv.URL

	got, err := g.Search(context.Background(), "Dallas, Texas, USA", 5)
	require.NoError(t, err)

	// The unparseable row is dropped, not fatal.
	require.Len(t, got, 2)
	assert.InDelta(t, 32.7767, got[0].Lat, 1e-6)
	assert.InDelta(t, -96.7970, got[0].Lon, 1e-6)
	assert.Equal(t, "Dallas, Dallas County, Texas, USA", got[0].DisplayName)
}

func TestNominatimSearchRetriesOnTooManyRequests(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"lat": "35.4676", "lon": "-97.5164", "display_name": "Oklahoma City"}]`))
	}))
	defer srv.Close()

	g, err := NewNominatimGeocoder("city-deployer/test", time.Second)
	require.NoError(t, err)
	g.baseURL = srv.URL

	got, err := g.Search(context.Background(), "Oklahoma City, USA", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, calls)
}

func TestNominatimSearchRejectsEmptyQuery(t *testing.T) {
	g, err := NewNominatimGeocoder("city-deployer/test", time.Second)
	require.NoError(t, err)

	_, err = g.Search(context.Background(), "", 5)
	assert.Error(t, err)
}
