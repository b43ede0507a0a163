package incident

import (
	"slices"
	"time"
)

// Store holds the full loaded dataset. It is never modified after Load.
type Store struct {
	records []Record
}

// Load copies records into a new Store. Field coercion is the caller's job;
// Load only rejects an empty sequence.
func Load(records []Record) (*Store, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	s := &Store{records: make([]Record, 0, len(records))}
	s.records = append(s.records, records...)
	return s, nil
}

// All returns every record in load order.
func (s *Store) All() []Record {
	return slices.Clone(s.records)
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.records)
}

// Bounds returns the earliest and latest OccurredAt across all records.
func (s *Store) Bounds() (time.Time, time.Time, error) {
	var lo, hi time.Time
	found := false
	for _, r := range s.records {
		if !r.HasTimestamp() {
			continue
		}
		if !found || r.OccurredAt.Before(lo) {
			lo = r.OccurredAt
		}
		if !found || r.OccurredAt.After(hi) {
			hi = r.OccurredAt
		}
		found = true
	}
	if !found {
		return time.Time{}, time.Time{}, ErrNoBounds
	}
	return lo, hi, nil
}

// YearBounds returns the smallest and largest Year across all records.
func (s *Store) YearBounds() (int, int, error) {
	lo, hi := 0, 0
	found := false
	for _, r := range s.records {
		if !r.HasYear() {
			continue
		}
		if !found || r.Year < lo {
			lo = r.Year
		}
		if !found || r.Year > hi {
			hi = r.Year
		}
		found = true
	}
	if !found {
		return 0, 0, ErrNoBounds
	}
	return lo, hi, nil
}
