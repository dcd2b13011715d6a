package domain

import "time"

// Artifact holds the rendered document plus the fixed auxiliary files
// published alongside it, keyed by destination path. Produced once per
// city and only ever replaced wholesale.
type Artifact struct {
	Files map[string][]byte
}

// DestinationHandle identifies the per-city destination on the hosting
// platform. The name is derived deterministically from the city request,
// so repeated runs upsert instead of duplicating.
type DestinationHandle struct {
	Owner    string
	Name     string
	Existed  bool
	HTMLURL  string
	PagesURL string
}

// Run record statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusFatal     = "fatal"
)

// RunRecord is the per-city success/failure record written for each run.
type RunRecord struct {
	RunID       string
	City        string
	Destination string
	Status      string
	Reason      string
	CompletedAt time.Time
}
