package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/incidentlens/internal/incident"
)

type incidentJSON struct {
	ID           string   `json:"id"`
	CaseNumber   string   `json:"case_number"`
	IncidentType string   `json:"incident_type"`
	Description  string   `json:"description,omitempty"`
	LocationType string   `json:"location_type"`
	OccurredAt   string   `json:"occurred_at,omitempty"`
	Year         int      `json:"year,omitempty"`
	Arrest       bool     `json:"arrest"`
	Domestic     bool     `json:"domestic"`
	Beat         string   `json:"beat,omitempty"`
	Block        string   `json:"block,omitempty"`
	District     string   `json:"district,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

func toIncidentJSON(r incident.Record) incidentJSON {
	out := incidentJSON{
		ID:           r.ID,
		CaseNumber:   r.CaseNumber,
		IncidentType: r.IncidentType,
		Description:  r.Description,
		LocationType: r.LocationType,
		Year:         r.Year,
		Arrest:       r.Arrest,
		Domestic:     r.Domestic,
		Beat:         r.Beat,
		Block:        r.Block,
		District:     r.District,
	}
	if r.HasTimestamp() {
		out.OccurredAt = r.OccurredAt.UTC().Format(time.RFC3339)
	}
	if r.HasCoordinates() {
		lat, lng := r.Latitude, r.Longitude
		out.Latitude, out.Longitude = &lat, &lng
	}
	return out
}

type listJSON struct {
	Mode    string         `json:"mode"`
	Range   incident.Range `json:"range"`
	Total   int            `json:"total"`
	Offset  int            `json:"offset"`
	Results []incidentJSON `json:"results"`
}

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.run(context.Background(), a)
}

// run prints one page of the filtered subset (used by tests).
func (c *ListCommand) run(ctx context.Context, a *app) error {
	if c.Limit < 0 || c.Offset < 0 {
		return fmt.Errorf("--limit and --offset must be >= 0")
	}

	d, err := a.buildDashboard(ctx, c.RangeFlags, a.cfg.Dashboard.TopN)
	if err != nil {
		return err
	}
	f := d.Filter()
	subset := f.FilteredSubset()
	page := paginate(subset, c.Offset, c.Limit)

	if c.globals != nil && c.globals.JSON {
		out := listJSON{
			Mode:    f.Key().String(),
			Range:   f.Range(),
			Total:   len(subset),
			Offset:  c.Offset,
			Results: make([]incidentJSON, len(page)),
		}
		for i, r := range page {
			out.Results[i] = toIncidentJSON(r)
		}
		return writeJSON(out)
	}

	rng := formatRange(f.Key(), f.Range())
	if len(page) == 0 {
		fmt.Printf("No incidents found (%s: %s)\n", f.Key(), rng)
		return nil
	}

	word := "incidents"
	if len(subset) == 1 {
		word = "incident"
	}
	fmt.Printf("Found %s %s (%s: %s)\n\n", formatNumber(int64(len(subset))), word, f.Key(), rng)

	for i, r := range page {
		fmt.Printf("%d. %s  %s", i+1+c.Offset, r.CaseNumber, displayCategory(r.IncidentType))
		if r.Description != "" {
			fmt.Printf(" / %s", r.Description)
		}
		fmt.Println()

		meta := displayCategory(r.LocationType)
		if r.HasTimestamp() {
			meta = r.OccurredAt.Format("2006-01-02 15:04") + " · " + meta
		} else if r.HasYear() {
			meta = fmt.Sprintf("%d · %s", r.Year, meta)
		}
		if r.Arrest {
			meta += " · arrest"
		}
		fmt.Printf("   %s\n", meta)
	}

	return nil
}

// paginate returns records[offset:offset+limit], clipped; limit 0 means no limit.
func paginate(records []incident.Record, offset, limit int) []incident.Record {
	if offset >= len(records) {
		return nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}
