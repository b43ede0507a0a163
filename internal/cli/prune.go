package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/runnerr0/incidentlens/internal/storage"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.run(context.Background(), a)
}

// run deletes (or with --dry-run counts) matching incidents (used by tests).
func (c *PruneCommand) run(ctx context.Context, a *app) error {
	if c.MinYear == 0 && c.MaxYear == 0 && !c.MissingCoords {
		return fmt.Errorf("prune needs --min-year, --max-year or --missing-coords")
	}
	if c.MinYear != 0 && c.MaxYear != 0 && c.MinYear > c.MaxYear {
		return fmt.Errorf("--min-year %d is after --max-year %d", c.MinYear, c.MaxYear)
	}

	n, err := a.store.Prune(ctx, storage.PruneQuery{
		MinYear:       c.MinYear,
		MaxYear:       c.MaxYear,
		MissingCoords: c.MissingCoords,
		DryRun:        c.DryRun,
	})
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	a.log.Info("prune complete", slog.Int64("matched", n), slog.Bool("dry_run", c.DryRun))

	if c.globals != nil && c.globals.JSON {
		return writeJSON(map[string]interface{}{
			"pruned":  n,
			"dry_run": c.DryRun,
		})
	}

	if c.DryRun {
		fmt.Printf("Would prune %s incidents.\n", formatNumber(n))
		return nil
	}
	fmt.Printf("Pruned %s incidents.\n", formatNumber(n))
	return nil
}
