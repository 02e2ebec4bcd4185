// Package model defines the catalog data types shared across the pipeline.
package model

// ListingRecord is one resolved catalog entry for a ryokan listing.
//
// URL is the unique key across the whole catalog; re-discovering the same
// URL never creates a second record. PriceMin <= PriceMax holds whenever
// both are non-zero. Lat and Lon are either both set or both nil.
type ListingRecord struct {
	URL                 string
	Name                string
	Address             string
	PriceMin            int
	PriceMax            int
	OpenAirRoomCount    int
	RentalOpenAir       bool
	RentalIndoor        bool
	RentalBoth          bool
	Rating              float64
	Tags                []string
	Description         string
	TransportationNotes string
	Lat                 *float64
	Lon                 *float64
}

// HasCoordinates reports whether the record has been resolved. Resolved
// records are immutable and skipped on resume.
func (r *ListingRecord) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// SetCoordinates records the resolved coordinate pair. It is the single
// mutation a record receives after extraction.
func (r *ListingRecord) SetCoordinates(lat, lon float64) {
	r.Lat = &lat
	r.Lon = &lon
}

// RunKind identifies what a pipeline run did, for the run log.
type RunKind string

const (
	RunScrape  RunKind = "scrape"
	RunGeocode RunKind = "geocode"
)

// RunStatus is the lifecycle state of a run log entry.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunCounters summarizes a completed pipeline run.
type RunCounters struct {
	PagesProcessed int
	PagesSkipped   int
	Listings       int
	Resolved       int
	Unresolved     int
}

// Run is one row of the run log.
type Run struct {
	ID        string
	Kind      RunKind
	Status    RunStatus
	Counters  RunCounters
	Error     string
	StartedAt string
	EndedAt   string
}
