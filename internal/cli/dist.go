package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/incidentlens/internal/incident"
)

type distJSON struct {
	Mode    string                       `json:"mode"`
	By      string                       `json:"by"`
	Range   incident.Range               `json:"range"`
	Total   int                          `json:"total"`
	Entries []incident.DistributionEntry `json:"entries"`
}

// Execute implements the go-flags Commander interface for DistCommand.
func (c *DistCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.run(context.Background(), a)
}

// run prints one distribution for the requested range (used by tests).
func (c *DistCommand) run(ctx context.Context, a *app) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}

	d, err := a.buildDashboard(ctx, c.RangeFlags, a.cfg.Dashboard.TopN)
	if err != nil {
		return err
	}
	s := d.Summary()

	by := c.By
	if by == "" {
		by = "type"
	}
	dist := s.ByType
	title := "Incident Types"
	if by == "location" {
		dist = s.ByLocation
		title = "Location Types"
	}

	if c.globals != nil && c.globals.JSON {
		entries := dist
		if c.Limit > 0 && c.Limit < len(entries) {
			entries = entries[:c.Limit]
		}
		return writeJSON(distJSON{
			Mode:    s.Mode,
			By:      by,
			Range:   s.Range,
			Total:   s.Total,
			Entries: entries,
		})
	}

	fmt.Printf("%s (%s: %s, %s incidents)\n", title, s.Mode, formatRange(s.Key, s.Range), formatNumber(int64(s.Total)))
	printDistribution(dist, c.Limit)
	return nil
}
