package domain

// Listing is one point-of-interest record within a category.
// Synthetic listings are deterministic placeholders generated when a
// provider returns fewer results than a category slot requires.
type Listing struct {
	Name       string
	Address    string
	Phone      string
	Website    string
	Category   string
	Lat        float64
	Lon        float64
	Positioned bool
	Synthetic  bool
}

// ContentBundle is the complete set of gathered content for one city.
// Every category list holds exactly the configured number of listings.
// Immutable; passed whole into the renderer.
type ContentBundle struct {
	Location           GeoLocation
	Narrative          string
	ListingsByCategory map[string][]Listing
}
