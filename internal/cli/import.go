package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/runnerr0/incidentlens/internal/incident"
	"github.com/runnerr0/incidentlens/internal/loader"
)

type importJSON struct {
	ImportID      int64  `json:"import_id"`
	Source        string `json:"source"`
	Rows          int    `json:"rows"`
	Imported      int    `json:"imported"`
	DroppedYear   int    `json:"dropped_year"`
	DroppedCoords int    `json:"dropped_coords"`
	Replaced      bool   `json:"replaced"`
}

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.run(context.Background(), a, args)
}

// options merges the configured coercion rules with the command flags.
func (c *ImportCommand) options(a *app) loader.Options {
	opts := a.cfg.LoaderOptions()
	if c.ArrestLiteral != "" {
		opts.ArrestLiteral = c.ArrestLiteral
	}
	if c.DateLayout != "" {
		opts.DateLayout = c.DateLayout
	}
	if c.MinYear != 0 {
		opts.MinYear = c.MinYear
	}
	if c.MaxYear != 0 {
		opts.MaxYear = c.MaxYear
	}
	if c.RequireCoords {
		opts.RequireCoords = true
	}
	return opts
}

// run parses the CSV and stores its records (used by tests).
func (c *ImportCommand) run(ctx context.Context, a *app, args []string) error {
	path := c.CSV
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = a.cfg.Dataset.CSVPath
	}
	if path == "" {
		return fmt.Errorf("no CSV given: pass --csv or set dataset.csv_path")
	}

	opts := c.options(a)
	if opts.MinYear != 0 && opts.MaxYear != 0 && opts.MinYear > opts.MaxYear {
		return fmt.Errorf("--min-year %d is after --max-year %d", opts.MinYear, opts.MaxYear)
	}

	records, stats, err := loader.ReadFile(path, opts)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	a.log.Debug("parsed csv",
		slog.String("path", path),
		slog.Int("rows", stats.Rows),
		slog.Int("kept", stats.Kept),
	)
	if len(records) == 0 {
		return fmt.Errorf("%w: no usable rows in %s", incident.ErrEmptyDataset, path)
	}

	store := a.store.AddIncidents
	if c.Replace {
		store = a.store.ReplaceIncidents
	}
	importID, err := store(ctx, path, records)
	if err != nil {
		return fmt.Errorf("store incidents: %w", err)
	}
	a.log.Info("import complete",
		slog.Int64("import_id", importID),
		slog.Int("imported", len(records)),
		slog.Int("dropped_year", stats.DroppedYear),
		slog.Int("dropped_coords", stats.DroppedCoords),
	)

	if c.globals != nil && c.globals.JSON {
		return writeJSON(importJSON{
			ImportID:      importID,
			Source:        path,
			Rows:          stats.Rows,
			Imported:      stats.Kept,
			DroppedYear:   stats.DroppedYear,
			DroppedCoords: stats.DroppedCoords,
			Replaced:      c.Replace,
		})
	}

	fmt.Printf("Imported %s of %s rows from %s (import #%d)\n",
		formatNumber(int64(stats.Kept)), formatNumber(int64(stats.Rows)), path, importID)
	if stats.DroppedYear > 0 {
		fmt.Printf("  dropped %s outside the year window\n", formatNumber(int64(stats.DroppedYear)))
	}
	if stats.DroppedCoords > 0 {
		fmt.Printf("  dropped %s without coordinates\n", formatNumber(int64(stats.DroppedCoords)))
	}
	return nil
}
