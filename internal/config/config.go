package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CategorySpec binds one point-of-interest category to its provider tag
// and its named template slot. The taxonomy is configuration, not code.
type CategorySpec struct {
	Name     string // stable key used in ContentBundle maps
	Display  string // singular human label, used for synthetic listings
	Slot     string // template slot name for the category list
	TagKey   string
	TagValue string
}

// PinnedCity is a curated coordinate for a well-known city whose name
// would otherwise be ambiguous to a geocoder.
type PinnedCity struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Centroid is an approximate fallback coordinate for a region.
type Centroid struct {
	Lat float64
	Lon float64
}

// Config is the single explicit configuration structure threaded through
// the pipeline. Version identifies the lookup-table revision.
type Config struct {
	Version string

	CitiesFile   string
	TemplatePath string

	DefaultRegion string
	Country       string

	// Destination naming
	RepoPrefix string
	RepoSuffix string

	// Published file names
	IndexFile        string
	MarkerFile       string
	RedirectFile     string
	VerificationFile string
	VerificationBody string

	// Template substitution
	CityToken      string
	CityTokenShort string
	SiteSuffix     string

	// Aggregation
	ListingsPerCategory int
	MinNarrativeChars   int
	BBoxDelta           float64
	WideBBoxDelta       float64
	Categories          []CategorySpec

	// Pacing (mandatory provider minimums)
	ProviderDelay time.Duration
	CityDelay     time.Duration
	HTTPTimeout   time.Duration

	UserAgent string

	// Storage
	DatabaseURL string
	DBPath      string

	// Resolution tables
	PinnedCities    map[string]PinnedCity
	RegionCentroids map[string]Centroid
	DefaultLat      float64
	DefaultLon      float64
	DefaultName     string
}

// Default returns the configuration used by the deployer, with
// environment overrides applied for the operational knobs.
func Default() Config {
	return Config{
		Version: "1",

		CitiesFile:   Get("CITIES_FILE", "new.txt"),
		TemplatePath: Get("TEMPLATE_PATH", "assets/index_template.html"),

		DefaultRegion: Get("DEFAULT_REGION", "Oklahoma"),
		Country:       "USA",

		RepoPrefix: "The-",
		RepoSuffix: "-Software-Guild",

		IndexFile:        "index.html",
		MarkerFile:       ".nojekyll",
		RedirectFile:     "thankyou.html",
		VerificationFile: "google51f4be664899794b6.html",
		VerificationBody: "google-site-verification: google51f4be664899794b6.html",

		CityToken:      "Oklahoma City",
		CityTokenShort: "OKC",
		SiteSuffix:     "Software Guild",

		ListingsPerCategory: 3,
		MinNarrativeChars:   80,
		BBoxDelta:           0.1,
		WideBBoxDelta:       0.25,
		Categories: []CategorySpec{
			{Name: "libraries", Display: "Library", Slot: "libraries", TagKey: "amenity", TagValue: "library"},
			{Name: "bars", Display: "Bar", Slot: "bars", TagKey: "amenity", TagValue: "bar"},
			{Name: "restaurants", Display: "Restaurant", Slot: "restaurants", TagKey: "amenity", TagValue: "restaurant"},
			{Name: "barbers", Display: "Barber Shop", Slot: "barbers", TagKey: "shop", TagValue: "hairdresser"},
			{Name: "cafes", Display: "Cafe", Slot: "cafes", TagKey: "amenity", TagValue: "cafe"},
			{Name: "attractions", Display: "Attraction", Slot: "attractions", TagKey: "tourism", TagValue: "attraction"},
		},

		ProviderDelay: GetDuration("PROVIDER_DELAY", 5*time.Second),
		CityDelay:     GetDuration("DEPLOY_DELAY", 180*time.Second),
		HTTPTimeout:   GetDuration("HTTP_TIMEOUT", 10*time.Second),

		UserAgent: Get("USER_AGENT", "Titan-Software-Guild-Deployer/1.0"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      Get("DB_PATH", "data/deployer.db"),

		PinnedCities: map[string]PinnedCity{
			"oklahoma city": {Lat: 35.4676, Lon: -97.5164, DisplayName: "Oklahoma City, Oklahoma, USA"},
			"new york":      {Lat: 40.7128, Lon: -74.0060, DisplayName: "New York, New York, USA"},
			"los angeles":   {Lat: 34.0522, Lon: -118.2437, DisplayName: "Los Angeles, California, USA"},
			"chicago":       {Lat: 41.8781, Lon: -87.6298, DisplayName: "Chicago, Illinois, USA"},
			"houston":       {Lat: 29.7604, Lon: -95.3698, DisplayName: "Houston, Texas, USA"},
			"phoenix":       {Lat: 33.4484, Lon: -112.0740, DisplayName: "Phoenix, Arizona, USA"},
		},
		RegionCentroids: map[string]Centroid{
			"oklahoma":   {Lat: 35.0078, Lon: -97.0929},
			"texas":      {Lat: 31.9686, Lon: -99.9018},
			"california": {Lat: 36.7783, Lon: -119.4179},
			"florida":    {Lat: 27.6648, Lon: -81.5158},
			"new york":   {Lat: 42.9538, Lon: -75.5268},
			"michigan":   {Lat: 44.3148, Lon: -85.6024},
			"arizona":    {Lat: 34.0489, Lon: -111.0937},
			"illinois":   {Lat: 40.6331, Lon: -89.3985},
		},
		// Geographic center of the contiguous United States.
		DefaultLat:  39.8283,
		DefaultLon:  -98.5795,
		DefaultName: "United States",
	}
}

// Get returns the value of an environment variable or a fallback.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt parses an integer environment variable, keeping the fallback on
// absent or malformed values.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// GetDuration parses a duration environment variable. Bare numbers are
// read as seconds for compatibility with older deploy workflows.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
