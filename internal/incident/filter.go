package incident

import (
	"fmt"
	"math"
	"time"
)

// FilterKey selects which record field a RangeFilter compares against.
type FilterKey int

const (
	// ByDate compares OccurredAt, with bounds in Unix milliseconds.
	ByDate FilterKey = iota
	// ByYear compares Year, with bounds in calendar years.
	ByYear
)

func (k FilterKey) String() string {
	switch k {
	case ByDate:
		return "date"
	case ByYear:
		return "year"
	default:
		return fmt.Sprintf("FilterKey(%d)", int(k))
	}
}

// ParseFilterKey maps "date" or "year" to a FilterKey.
func ParseFilterKey(s string) (FilterKey, error) {
	switch s {
	case "date", "":
		return ByDate, nil
	case "year":
		return ByYear, nil
	default:
		return 0, fmt.Errorf("unknown filter mode %q (use date or year)", s)
	}
}

// value extracts the comparison key of r. ok is false when the field is undefined.
func (k FilterKey) value(r Record) (float64, bool) {
	switch k {
	case ByYear:
		return float64(r.Year), r.HasYear()
	default:
		return DateBound(r.OccurredAt), r.HasTimestamp()
	}
}

// DateBound converts t into a ByDate bound.
func DateBound(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// YearBound converts y into a ByYear bound.
func YearBound(y int) float64 {
	return float64(y)
}

// BoundTime converts a ByDate bound back into a time.
func BoundTime(b float64) time.Time {
	return time.UnixMilli(int64(b)).UTC()
}

// Range is an inclusive interval in a FilterKey's units.
type Range struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// NewRange returns a Range with Lower <= Upper, swapping if needed.
func NewRange(lower, upper float64) Range {
	if lower > upper {
		lower, upper = upper, lower
	}
	return Range{Lower: lower, Upper: upper}
}

// Contains reports whether v lies inside r, both ends inclusive.
func (r Range) Contains(v float64) bool {
	return v >= r.Lower && v <= r.Upper
}

// RangeFilter holds the current range over a Store and the subset it selects.
// It is not safe for concurrent use.
type RangeFilter struct {
	store   *Store
	key     FilterKey
	bounds  Range
	current Range
	subset  []Record
}

// NewRangeFilter creates a filter covering the full span of store on key.
func NewRangeFilter(store *Store, key FilterKey) (*RangeFilter, error) {
	var bounds Range
	switch key {
	case ByDate:
		lo, hi, err := store.Bounds()
		if err != nil {
			return nil, err
		}
		bounds = Range{Lower: DateBound(lo), Upper: DateBound(hi)}
	case ByYear:
		lo, hi, err := store.YearBounds()
		if err != nil {
			return nil, err
		}
		bounds = Range{Lower: YearBound(lo), Upper: YearBound(hi)}
	default:
		return nil, fmt.Errorf("unsupported filter key %v", key)
	}

	f := &RangeFilter{store: store, key: key, bounds: bounds}
	f.apply(bounds)
	return f, nil
}

// SetRange replaces the current range and recomputes the filtered subset.
// Bounds outside the dataset are clamped and out-of-order bounds swapped.
// Only NaN is rejected, leaving the previous state in place.
func (f *RangeFilter) SetRange(lower, upper float64) error {
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return fmt.Errorf("%w: bound is NaN", ErrInvalidRange)
	}
	f.apply(NewRange(f.clamp(lower), f.clamp(upper)))
	return nil
}

// Reset restores the full dataset span.
func (f *RangeFilter) Reset() {
	f.apply(f.bounds)
}

func (f *RangeFilter) clamp(v float64) float64 {
	return math.Min(math.Max(v, f.bounds.Lower), f.bounds.Upper)
}

func (f *RangeFilter) apply(r Range) {
	f.current = r
	subset := make([]Record, 0, len(f.store.records))
	for _, rec := range f.store.records {
		v, ok := f.key.value(rec)
		if ok && r.Contains(v) {
			subset = append(subset, rec)
		}
	}
	f.subset = subset
}

// FilteredSubset returns the records inside the current range in store order.
func (f *RangeFilter) FilteredSubset() []Record {
	out := make([]Record, len(f.subset))
	copy(out, f.subset)
	return out
}

// Range returns the current range.
func (f *RangeFilter) Range() Range { return f.current }

// Bounds returns the full span of the dataset on the filter's key.
func (f *RangeFilter) Bounds() Range { return f.bounds }

// Key returns the field the filter compares on.
func (f *RangeFilter) Key() FilterKey { return f.key }
