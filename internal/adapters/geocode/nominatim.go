package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"city-deployer-service/internal/platform/httpretry"
	"city-deployer-service/internal/ports"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder implements ports.Geocoder against the OpenStreetMap
// Nominatim search API. Nominatim requires an identifying User-Agent and
// rejects anonymous clients with 403.
type NominatimGeocoder struct {
	session   *http.Client
	baseURL   string
	userAgent string
}

func NewNominatimGeocoder(userAgent string, timeout time.Duration) (*NominatimGeocoder, error) {
	if userAgent == "" {
		return nil, errors.New("nominatim: user agent is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &NominatimGeocoder{
		session:   &http.Client{Timeout: timeout},
		baseURL:   defaultNominatimURL,
		userAgent: userAgent,
	}, nil
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns up to limit candidates for a free-text query.
func (n *NominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]ports.GeoCandidate, error) {
	if query == "" {
		return nil, errors.New("nominatim search: query must be non-empty")
	}
	if limit <= 0 {
		limit = 1
	}

	endpoint := n.baseURL + "/search"

	makeReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", n.userAgent)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("format", "json")
		q.Set("q", query)
		q.Set("limit", strconv.Itoa(limit))
		req.URL.RawQuery = q.Encode()
		return req, nil
	}

	resp, err := httpretry.DoWithRetry(ctx, n.session, makeReq)
	if err != nil {
		return nil, fmt.Errorf("nominatim search %q: %w", query, err)
	}
	defer resp.Body.Close()

	var decoded []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("nominatim search %q: decode response: %w", query, err)
	}

	out := make([]ports.GeoCandidate, 0, len(decoded))
	for _, r := range decoded {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		out = append(out, ports.GeoCandidate{
			Lat:         lat,
			Lon:         lon,
			DisplayName: r.DisplayName,
		})
	}

	return out, nil
}
