package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/incidentlens/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string              `json:"version"`
	DatabasePath      string              `json:"database_path"`
	DatabaseSizeBytes int64               `json:"database_size_bytes"`
	TotalIncidents    int64               `json:"total_incidents"`
	WithCoords        int64               `json:"with_coords"`
	Arrests           int64               `json:"arrests"`
	OldestIncident    string              `json:"oldest_incident,omitempty"`
	NewestIncident    string              `json:"newest_incident,omitempty"`
	MinYear           int                 `json:"min_year,omitempty"`
	MaxYear           int                 `json:"max_year,omitempty"`
	FilterMode        string              `json:"filter_mode"`
	TopN              int                 `json:"top_n"`
	TopTypes          []categoryCountJSON `json:"top_types"`
	TopLocations      []categoryCountJSON `json:"top_locations"`
	Imports           []importEntryJSON   `json:"imports"`
}

type categoryCountJSON struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type importEntryJSON struct {
	ID         int64  `json:"id"`
	Source     string `json:"source"`
	RowCount   int64  `json:"row_count"`
	ImportedAt string `json:"imported_at"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.run(context.Background(), a)
}

// run prints status for the given app (used by tests).
func (c *StatusCommand) run(ctx context.Context, a *app) error {
	stats, err := a.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	imports, err := a.store.ListImports(ctx)
	if err != nil {
		return fmt.Errorf("list imports: %w", err)
	}

	dbSize := getDatabaseSize(a.db, a.dbPath)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(a, stats, imports, dbSize)
	}
	return c.printStatusHuman(a, stats, imports, dbSize)
}

func (c *StatusCommand) printStatusHuman(a *app, stats *storage.Stats, imports []storage.Import, dbSize int64) error {
	fmt.Println("Incidentlens Status")
	fmt.Println("===================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", a.dbPath, formatBytes(dbSize))
	fmt.Printf("Incidents:     %s\n", formatNumber(stats.TotalIncidents))

	if stats.TotalIncidents > 0 {
		pct := float64(stats.WithCoords) / float64(stats.TotalIncidents)
		fmt.Printf("Geocoded:      %s (%s)\n", formatNumber(stats.WithCoords), formatPercent(pct))
		rate := float64(stats.Arrests) / float64(stats.TotalIncidents)
		fmt.Printf("Arrests:       %s (%s)\n", formatNumber(stats.Arrests), formatPercent(rate))
		if !stats.OldestIncident.IsZero() {
			fmt.Printf("Oldest:        %s\n", stats.OldestIncident.Format("2006-01-02"))
			fmt.Printf("Newest:        %s\n", stats.NewestIncident.Format("2006-01-02"))
		}
		if stats.MinYear != 0 {
			fmt.Printf("Years:         %d .. %d\n", stats.MinYear, stats.MaxYear)
		}
	}

	fmt.Printf("Filter mode:   %s\n", a.cfg.Filter.Mode)
	fmt.Printf("Heat map top:  %d\n", a.cfg.Dashboard.TopN)

	if len(stats.TopTypes) > 0 {
		fmt.Println()
		fmt.Println("Top Incident Types:")
		for _, cc := range stats.TopTypes {
			fmt.Printf("  %-32s %s\n", cc.Category, formatNumber(cc.Count))
		}
	}
	if len(stats.TopLocations) > 0 {
		fmt.Println()
		fmt.Println("Top Locations:")
		for _, cc := range stats.TopLocations {
			fmt.Printf("  %-32s %s\n", cc.Category, formatNumber(cc.Count))
		}
	}

	fmt.Println()
	if len(imports) == 0 {
		fmt.Println("Imports:       none")
		return nil
	}
	fmt.Println("Imports:")
	for _, im := range imports {
		fmt.Printf("  #%d  %s  %s rows  %s\n", im.ID, im.ImportedAt.Local().Format("2006-01-02 15:04"),
			formatNumber(im.RowCount), im.Source)
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(a *app, stats *storage.Stats, imports []storage.Import, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      a.dbPath,
		DatabaseSizeBytes: dbSize,
		TotalIncidents:    stats.TotalIncidents,
		WithCoords:        stats.WithCoords,
		Arrests:           stats.Arrests,
		MinYear:           stats.MinYear,
		MaxYear:           stats.MaxYear,
		FilterMode:        a.cfg.Filter.Mode,
		TopN:              a.cfg.Dashboard.TopN,
		TopTypes:          make([]categoryCountJSON, len(stats.TopTypes)),
		TopLocations:      make([]categoryCountJSON, len(stats.TopLocations)),
		Imports:           make([]importEntryJSON, len(imports)),
	}

	if !stats.OldestIncident.IsZero() {
		out.OldestIncident = stats.OldestIncident.UTC().Format(time.RFC3339)
		out.NewestIncident = stats.NewestIncident.UTC().Format(time.RFC3339)
	}

	for i, cc := range stats.TopTypes {
		out.TopTypes[i] = categoryCountJSON{Category: cc.Category, Count: cc.Count}
	}
	for i, cc := range stats.TopLocations {
		out.TopLocations[i] = categoryCountJSON{Category: cc.Category, Count: cc.Count}
	}
	for i, im := range imports {
		out.Imports[i] = importEntryJSON{
			ID:         im.ID,
			Source:     im.Source,
			RowCount:   im.RowCount,
			ImportedAt: im.ImportedAt.UTC().Format(time.RFC3339),
		}
	}

	return writeJSON(out)
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}
