package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCityRequest(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantOK     bool
		wantName   string
		wantRegion string
	}{
		{name: "dash separator", line: "Dallas-Texas", wantOK: true, wantName: "Dallas", wantRegion: "Texas"},
		{name: "comma separator", line: "Dallas, Texas", wantOK: true, wantName: "Dallas", wantRegion: "Texas"},
		{name: "comma wins over dash", line: "Winston-Salem, North Carolina", wantOK: true, wantName: "Winston-Salem", wantRegion: "North Carolina"},
		{name: "no separator uses default region", line: "Yukon", wantOK: true, wantName: "Yukon", wantRegion: "Oklahoma"},
		{name: "surrounding whitespace", line: "  Austin - Texas  ", wantOK: true, wantName: "Austin", wantRegion: "Texas"},
		{name: "blank line", line: "   ", wantOK: false},
		{name: "empty line", line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, ok := ParseCityRequest(tt.line, "Oklahoma")
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantName, req.Name)
			assert.Equal(t, tt.wantRegion, req.Region)
		})
	}
}

func TestCityRequestKey(t *testing.T) {
	a, _ := ParseCityRequest("Dallas-Texas", "Oklahoma")
	b, _ := ParseCityRequest("  dallas ,  texas ", "Oklahoma")
	assert.Equal(t, a.Key(), b.Key())
}

func TestBoxAround(t *testing.T) {
	loc := GeoLocation{Lat: 35.0, Lon: -97.0}
	box := BoxAround(loc, 0.1)

	assert.InDelta(t, 34.9, box.South, 1e-9)
	assert.InDelta(t, -97.1, box.West, 1e-9)
	assert.InDelta(t, 35.1, box.North, 1e-9)
	assert.InDelta(t, -96.9, box.East, 1e-9)
}

func TestHaversineMeters(t *testing.T) {
	// Oklahoma City to Dallas is roughly 300 km.
	d := HaversineMeters(35.4676, -97.5164, 32.7767, -96.7970)
	assert.InDelta(t, 307000, d, 15000)

	assert.Zero(t, HaversineMeters(35.0, -97.0, 35.0, -97.0))
}
