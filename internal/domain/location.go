package domain

import "math"

// LocationSource tags which tier of the resolution fallback chain
// produced a GeoLocation.
type LocationSource string

const (
	SourceExactMatch     LocationSource = "exact-match"
	SourceRegionCentroid LocationSource = "region-centroid"
	SourceFixedDefault   LocationSource = "fixed-default"
)

// GeoLocation is a resolved city position. It is always populated;
// resolution never yields "no location".
type GeoLocation struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Source      LocationSource
}

// BoundingBox is a geographic box (south, west, north, east).
type BoundingBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// BoxAround returns a box of ±delta degrees around a location.
func BoxAround(loc GeoLocation, delta float64) BoundingBox {
	return BoundingBox{
		South: loc.Lat - delta,
		West:  loc.Lon - delta,
		North: loc.Lat + delta,
		East:  loc.Lon + delta,
	}
}

const earthRadiusMeters = 6371000

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
