package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"city-deployer-service/internal/platform/httpretry"
	"city-deployer-service/internal/ports"
)

const defaultWikipediaURL = "https://en.wikipedia.org"

// WikipediaSummaries implements ports.SummaryProvider against the
// Wikipedia REST summary endpoint.
type WikipediaSummaries struct {
	session   *http.Client
	baseURL   string
	userAgent string
}

func NewWikipediaSummaries(userAgent string, timeout time.Duration) (*WikipediaSummaries, error) {
	if userAgent == "" {
		return nil, errors.New("wikipedia: user agent is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WikipediaSummaries{
		session:   &http.Client{Timeout: timeout},
		baseURL:   defaultWikipediaURL,
		userAgent: userAgent,
	}, nil
}

type summaryResponse struct {
	Type    string `json:"type"`
	Extract string `json:"extract"`
}

// Summary fetches the page summary for a title. Absent pages map to
// ports.ErrNotFound so the caller can move to the next query variant.
func (w *WikipediaSummaries) Summary(ctx context.Context, title string) (ports.PageSummary, error) {
	if strings.TrimSpace(title) == "" {
		return ports.PageSummary{}, errors.New("wikipedia summary: title must be non-empty")
	}

	slug := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	endpoint := w.baseURL + "/api/rest_v1/page/summary/" + slug

	makeReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", w.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := httpretry.DoWithRetry(ctx, w.session, makeReq)
	if err != nil {
		var se *httpretry.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return ports.PageSummary{}, fmt.Errorf("wikipedia summary %q: %w", title, ports.ErrNotFound)
		}
		return ports.PageSummary{}, fmt.Errorf("wikipedia summary %q: %w", title, err)
	}
	defer resp.Body.Close()

	var decoded summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.PageSummary{}, fmt.Errorf("wikipedia summary %q: decode response: %w", title, err)
	}

	return ports.PageSummary{Extract: decoded.Extract, Type: decoded.Type}, nil
}
