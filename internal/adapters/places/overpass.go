package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/platform/httpretry"
	"city-deployer-service/internal/ports"
)

const defaultOverpassURL = "https://overpass-api.de/api/interpreter"

// OverpassProvider implements ports.PlacesProvider against the Overpass
// API. Overpass is a shared community service with hard rate limits;
// callers are responsible for pacing successive queries.
type OverpassProvider struct {
	session   *http.Client
	baseURL   string
	userAgent string
}

func NewOverpassProvider(userAgent string, timeout time.Duration) (*OverpassProvider, error) {
	if userAgent == "" {
		return nil, errors.New("overpass: user agent is empty")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OverpassProvider{
		session:   &http.Client{Timeout: timeout},
		baseURL:   defaultOverpassURL,
		userAgent: userAgent,
	}, nil
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FindPlaces lists points of interest matching the tag within the box.
func (o *OverpassProvider) FindPlaces(
	ctx context.Context,
	box domain.BoundingBox,
	tag ports.TagFilter,
	limit int,
) ([]ports.Place, error) {
	if tag.Key == "" || tag.Value == "" {
		return nil, errors.New("overpass find places: tag key and value must be non-empty")
	}
	if limit <= 0 {
		limit = 10
	}

	query := buildQuery(box, tag, limit)

	makeReq := func() (*http.Request, error) {
		form := url.Values{}
		form.Set("data", query)

		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, o.baseURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", o.userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}

	resp, err := httpretry.DoWithRetry(ctx, o.session, makeReq)
	if err != nil {
		return nil, fmt.Errorf("overpass %s=%s: %w", tag.Key, tag.Value, err)
	}
	defer resp.Body.Close()

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("overpass %s=%s: decode response: %w", tag.Key, tag.Value, err)
	}

	out := make([]ports.Place, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		out = append(out, toPlace(el))
	}
	return out, nil
}

// buildQuery renders an Overpass QL query for nodes and ways carrying
// the tag inside the box. Overpass bbox order is south,west,north,east.
func buildQuery(box domain.BoundingBox, tag ports.TagFilter, limit int) string {
	bbox := fmt.Sprintf("%f,%f,%f,%f", box.South, box.West, box.North, box.East)
	return fmt.Sprintf(`[out:json][timeout:45];
(
  node[%q=%q](%s);
  way[%q=%q](%s);
);
out center %d;`, tag.Key, tag.Value, bbox, tag.Key, tag.Value, bbox, limit)
}

func toPlace(el overpassElement) ports.Place {
	p := ports.Place{
		Name:    el.Tags["name"],
		Phone:   firstTag(el.Tags, "phone", "contact:phone"),
		Website: firstTag(el.Tags, "website", "contact:website"),
	}

	var parts []string
	if v := el.Tags["addr:housenumber"]; v != "" {
		parts = append(parts, v)
	}
	if v := el.Tags["addr:street"]; v != "" {
		parts = append(parts, v)
	}
	if v := firstTag(el.Tags, "addr:city", "addr:place"); v != "" {
		parts = append(parts, v)
	}
	p.Address = strings.Join(parts, ", ")

	switch {
	case el.Lat != 0 || el.Lon != 0:
		p.Lat, p.Lon, p.Positioned = el.Lat, el.Lon, true
	case el.Center != nil:
		p.Lat, p.Lon, p.Positioned = el.Center.Lat, el.Center.Lon, true
	}

	return p
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}
