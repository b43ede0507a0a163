package storage

import "time"

// Import records one CSV ingestion run.
type Import struct {
	ID         int64
	Source     string
	RowCount   int64
	ImportedAt time.Time
}

// PruneQuery selects stored incidents to delete. A row matches when its year
// falls outside [MinYear, MaxYear] (zero bounds are open) or, with
// MissingCoords, when either coordinate is absent.
type PruneQuery struct {
	MinYear       int
	MaxYear       int
	MissingCoords bool
	DryRun        bool
}

// empty reports whether q would match nothing.
func (q PruneQuery) empty() bool {
	return q.MinYear == 0 && q.MaxYear == 0 && !q.MissingCoords
}

// Stats holds aggregate statistics about the incident cache.
type Stats struct {
	TotalIncidents int64
	TotalImports   int64
	WithCoords     int64
	Arrests        int64
	OldestIncident time.Time
	NewestIncident time.Time
	MinYear        int
	MaxYear        int
	TopTypes       []CategoryCount
	TopLocations   []CategoryCount
}

// CategoryCount pairs a category with its incident count.
type CategoryCount struct {
	Category string
	Count    int64
}
