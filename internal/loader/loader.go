// Package loader parses incident CSV exports into incident records.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/incidentlens/internal/incident"
)

// Column names of the public incident export.
const (
	ColID           = "ID"
	ColCaseNumber   = "Case Number"
	ColDate         = "Date"
	ColPrimaryType  = "Primary Type"
	ColDescription  = "Description"
	ColLocationDesc = "Location Description"
	ColArrest       = "Arrest"
	ColDomestic     = "Domestic"
	ColBeat         = "Beat"
	ColBlock        = "Block"
	ColDistrict     = "District"
	ColYear         = "Year"
	ColLatitude     = "Latitude"
	ColLongitude    = "Longitude"
)

// DefaultDateLayout matches timestamps like "03/01/2021 11:30:00 PM".
const DefaultDateLayout = "01/02/2006 03:04:05 PM"

// DefaultArrestLiteral is the exact text that marks a boolean column true.
const DefaultArrestLiteral = "true"

// Options controls coercion and the optional preprocessing window.
type Options struct {
	// ArrestLiteral is compared case-sensitively against Arrest and Domestic.
	ArrestLiteral string
	DateLayout    string

	// MinYear and MaxYear drop rows outside the window; zero means unbounded.
	MinYear int
	MaxYear int

	// RequireCoords drops rows without finite coordinates.
	RequireCoords bool
}

// DefaultOptions returns options with the default literal and layout.
func DefaultOptions() Options {
	return Options{
		ArrestLiteral: DefaultArrestLiteral,
		DateLayout:    DefaultDateLayout,
	}
}

// Stats reports what a read kept and dropped.
type Stats struct {
	Rows          int
	Kept          int
	DroppedYear   int
	DroppedCoords int
}

// fallbackLayouts are tried after the configured layout.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string, opts Options) ([]incident.Record, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a CSV stream with a header row. Field values that fail to
// parse are coerced rather than rejected: booleans become false, numbers
// become NaN (coordinates) or zero (year), and dates the zero time.
func Read(r io.Reader, opts Options) ([]incident.Record, Stats, error) {
	if opts.ArrestLiteral == "" {
		opts.ArrestLiteral = DefaultArrestLiteral
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Stats{}, fmt.Errorf("read header: empty input")
		}
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	if err := cols.validate(); err != nil {
		return nil, Stats{}, err
	}

	var (
		records []incident.Record
		stats   Stats
	)
	for {
		row, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		rec := cols.record(row, opts)
		if !opts.inYearWindow(rec.Year) {
			stats.DroppedYear++
			continue
		}
		if opts.RequireCoords && !rec.HasCoordinates() {
			stats.DroppedCoords++
			continue
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)

	return records, stats, nil
}

func (o Options) inYearWindow(year int) bool {
	if o.MinYear != 0 && year < o.MinYear {
		return false
	}
	if o.MaxYear != 0 && year > o.MaxYear {
		return false
	}
	return true
}

// columns maps known column names to their position in the header.
type columns map[string]int

func indexColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func (c columns) validate() error {
	var missing []string
	for _, name := range []string{ColPrimaryType, ColLocationDesc} {
		if _, ok := c[name]; !ok {
			missing = append(missing, name)
		}
	}
	_, hasDate := c[ColDate]
	_, hasYear := c[ColYear]
	if !hasDate && !hasYear {
		missing = append(missing, ColDate+" or "+ColYear)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columns) record(row []string, opts Options) incident.Record {
	rec := incident.Record{
		ID:           c.get(row, ColID),
		CaseNumber:   c.get(row, ColCaseNumber),
		IncidentType: c.get(row, ColPrimaryType),
		Description:  c.get(row, ColDescription),
		LocationType: c.get(row, ColLocationDesc),
		OccurredAt:   ParseTime(c.get(row, ColDate), opts.DateLayout),
		Year:         parseYear(c.get(row, ColYear)),
		Arrest:       ParseBool(c.get(row, ColArrest), opts.ArrestLiteral),
		Domestic:     ParseBool(c.get(row, ColDomestic), opts.ArrestLiteral),
		Latitude:     parseFloat(c.get(row, ColLatitude)),
		Longitude:    parseFloat(c.get(row, ColLongitude)),
		Beat:         c.get(row, ColBeat),
		Block:        c.get(row, ColBlock),
		District:     c.get(row, ColDistrict),
	}
	if rec.Year == 0 && rec.HasTimestamp() {
		rec.Year = rec.OccurredAt.Year()
	}
	return rec
}

// ParseBool is true only for an exact, case-sensitive match of literal.
func ParseBool(s, literal string) bool {
	return s == literal
}

// ParseTime parses s with layout, then with a few ISO-style fallbacks.
// Unparseable input yields the zero time.
func ParseTime(s, layout string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(layout, s); err == nil {
		return t
	}
	for _, l := range fallbackLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseYear(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
