package domain

import "strings"

// CityRequest is one parsed line of deployment input.
// Immutable once parsed.
type CityRequest struct {
	Raw    string
	Name   string
	Region string
}

// ParseCityRequest parses a single input line into a CityRequest.
//
// Accepted forms are "City-Region" and "City, Region". A line without a
// separator falls back to defaultRegion. The second return value is false
// for blank lines.
func ParseCityRequest(line string, defaultRegion string) (CityRequest, bool) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return CityRequest{}, false
	}

	name := raw
	region := defaultRegion

	switch {
	case strings.Contains(raw, ","):
		parts := strings.SplitN(raw, ",", 2)
		name = strings.TrimSpace(parts[0])
		region = strings.TrimSpace(parts[1])
	case strings.Contains(raw, "-"):
		parts := strings.SplitN(raw, "-", 2)
		name = strings.TrimSpace(parts[0])
		region = strings.TrimSpace(parts[1])
	}

	if name == "" {
		return CityRequest{}, false
	}
	if region == "" {
		region = defaultRegion
	}

	return CityRequest{Raw: raw, Name: name, Region: region}, true
}

// Key returns a normalized identity for the request, used for lookup
// tables and memoization.
func (c CityRequest) Key() string {
	return strings.ToLower(strings.Join(strings.Fields(c.Name+" "+c.Region), " "))
}
