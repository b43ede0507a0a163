package incident

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrEmptyDataset is returned when a load produces zero records.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrNoBounds is returned when no record carries a usable filter key.
	ErrNoBounds = errors.New("no record has a usable timestamp")

	// ErrInvalidRange is returned for a range bound that cannot be represented.
	ErrInvalidRange = errors.New("invalid filter range")
)

// Record is a single incident observation after type coercion.
type Record struct {
	ID           string    `json:"id"`
	CaseNumber   string    `json:"case_number"`
	IncidentType string    `json:"incident_type,omitempty"`
	Description  string    `json:"description,omitempty"`
	LocationType string    `json:"location_type,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
	Year         int       `json:"year,omitempty"`
	Arrest       bool      `json:"arrest"`
	Domestic     bool      `json:"domestic"`
	Latitude     float64   `json:"-"`
	Longitude    float64   `json:"-"`
	Beat         string    `json:"beat,omitempty"`
	Block        string    `json:"block,omitempty"`
	District     string    `json:"district,omitempty"`
}

// HasTimestamp reports whether OccurredAt is defined.
func (r Record) HasTimestamp() bool {
	return !r.OccurredAt.IsZero()
}

// HasYear reports whether Year is defined.
func (r Record) HasYear() bool {
	return r.Year != 0
}

// HasCoordinates reports whether both coordinates are finite.
func (r Record) HasCoordinates() bool {
	return isFinite(r.Latitude) && isFinite(r.Longitude)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
