package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/incidentlens/internal/incident"
)

// Execute implements the go-flags Commander interface for SummaryCommand.
func (c *SummaryCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.run(context.Background(), a)
}

// topN resolves --top; negative means the configured value.
func (c *SummaryCommand) topN(a *app) int {
	if c.Top < 0 {
		return a.cfg.Dashboard.TopN
	}
	return c.Top
}

// run prints the dashboard for the requested range (used by tests).
func (c *SummaryCommand) run(ctx context.Context, a *app) error {
	d, err := a.buildDashboard(ctx, c.RangeFlags, c.topN(a))
	if err != nil {
		return err
	}
	s := d.Summary()

	if c.globals != nil && c.globals.JSON {
		return writeJSON(s)
	}
	printSummary(s)
	return nil
}

func printSummary(s incident.Summary) {
	fmt.Printf("Incident Summary (%s: %s)\n", s.Mode, formatRange(s.Key, s.Range))
	fmt.Printf("Incidents:     %s\n", formatNumber(int64(s.Total)))
	if s.Total == 0 {
		fmt.Println()
		fmt.Println("No incidents in range.")
		return
	}
	if s.Extent != nil {
		e := s.Extent
		fmt.Printf("Extent:        %.4f,%.4f .. %.4f,%.4f (%s geocoded, center %.4f,%.4f)\n",
			e.South, e.West, e.North, e.East, formatNumber(int64(e.Points)), e.CenLat, e.CenLng)
	}

	fmt.Println()
	fmt.Println("Incident Types:")
	printDistribution(s.ByType, 0)

	fmt.Println()
	fmt.Println("Location Types:")
	printDistribution(s.ByLocation, 0)

	if len(s.Rows) == 0 || len(s.Cols) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Heat Map (location x type):")
	printHeatmap(s.Rows, s.Cols, s.Heatmap)
}

// printDistribution prints up to limit entries (0 = all) in their given order.
func printDistribution(dist []incident.DistributionEntry, limit int) {
	if len(dist) == 0 {
		fmt.Println("  (none)")
		return
	}
	if limit > 0 && limit < len(dist) {
		dist = dist[:limit]
	}
	for _, e := range dist {
		fmt.Printf("  %-32s %10s  %6s arrested\n",
			truncate(displayCategory(e.Category), 32), formatNumber(int64(e.Count)), formatPercent(e.ArrestRate))
	}
}

// printHeatmap prints the dense grid with numbered columns and a legend.
func printHeatmap(rows, cols []string, cells []incident.CrossTabCell) {
	const rowWidth = 24

	var b strings.Builder
	fmt.Fprintf(&b, "  %-*s", rowWidth, "")
	for j := range cols {
		fmt.Fprintf(&b, " %7s", fmt.Sprintf("[%d]", j+1))
	}
	fmt.Println(b.String())

	for i, row := range rows {
		b.Reset()
		fmt.Fprintf(&b, "  %-*s", rowWidth, truncate(displayCategory(row), rowWidth))
		for j := range cols {
			fmt.Fprintf(&b, " %7d", cells[i*len(cols)+j].Count)
		}
		fmt.Println(b.String())
	}

	fmt.Println()
	for j, col := range cols {
		fmt.Printf("  [%d] %s\n", j+1, displayCategory(col))
	}
}
