package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/incidentlens/internal/config"
	"github.com/runnerr0/incidentlens/internal/incident"
	"github.com/runnerr0/incidentlens/internal/logging"
	"github.com/runnerr0/incidentlens/internal/storage"
)

// app bundles what a subcommand needs once config has been resolved.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *storage.SQLiteStore
	db     *sql.DB
	dbPath string

	logCloser io.Closer
}

// loadConfig reads --config when given, otherwise the default path
// (created with defaults on first run).
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.LoadOrCreate()
}

// openApp loads config, builds the logger and opens the migrated cache.
func openApp(globals *GlobalFlags) (*app, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	verbose := globals != nil && globals.Verbose
	logger, logCloser, err := logging.New(cfg.Logging, verbose, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("resolve db path: %w", err)
	}

	store, db, err := openStore(dbPath, cfg.Storage.SQLiteJournalMode)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	logger.Debug("opened cache", slog.String("path", dbPath))

	return &app{
		cfg:       cfg,
		log:       logger,
		store:     store,
		db:        db,
		dbPath:    dbPath,
		logCloser: logCloser,
	}, nil
}

// Close releases the store, the database and the log file.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// openStore opens the SQLite cache at dbPath, runs migrations, and returns a
// ready-to-use store and the underlying *sql.DB.
func openStore(dbPath, journalMode string) (*storage.SQLiteStore, *sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db).WithJournalMode(journalMode)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	return store, db, nil
}

// filterKey resolves --mode, falling back to the configured mode.
func (a *app) filterKey(mode string) (incident.FilterKey, error) {
	if mode == "" {
		return a.cfg.FilterKey(), nil
	}
	return incident.ParseFilterKey(mode)
}

// buildDashboard loads every cached incident and narrows the dashboard to the
// range given by rf. Omitted bounds default to the dataset bounds.
func (a *app) buildDashboard(ctx context.Context, rf RangeFlags, topN int) (*incident.Dashboard, error) {
	key, err := a.filterKey(rf.Mode)
	if err != nil {
		return nil, err
	}

	records, err := a.store.LoadIncidents(ctx)
	if err != nil {
		return nil, err
	}
	st, err := incident.Load(records)
	if err != nil {
		if errors.Is(err, incident.ErrEmptyDataset) {
			return nil, fmt.Errorf("%w: run \"incidentlens import\" first", err)
		}
		return nil, err
	}

	d, err := incident.NewDashboard(st, key, topN)
	if err != nil {
		if errors.Is(err, incident.ErrNoBounds) {
			return nil, fmt.Errorf("%w: no incident has a usable %s", err, key)
		}
		return nil, err
	}

	if rf.From == "" && rf.To == "" {
		return d, nil
	}

	b := d.Filter().Bounds()
	lower, upper := b.Lower, b.Upper
	if rf.From != "" {
		if lower, err = parseBound(key, rf.From, false); err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if rf.To != "" {
		if upper, err = parseBound(key, rf.To, true); err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if _, err := d.SetRange(lower, upper); err != nil {
		return nil, err
	}

	r := d.Filter().Range()
	a.log.Debug("range applied",
		slog.String("mode", key.String()),
		slog.String("from", formatBound(key, r.Lower)),
		slog.String("to", formatBound(key, r.Upper)),
		slog.Int("records", d.Summary().Total),
	)
	return d, nil
}

// parseBound converts a --from or --to value into a bound in key's units.
// A date-only upper bound covers the whole day.
func parseBound(key incident.FilterKey, s string, upper bool) (float64, error) {
	s = strings.TrimSpace(s)
	if key == incident.ByYear {
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("year %q is not a number", s)
		}
		return incident.YearBound(y), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return incident.DateBound(t), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return incident.DateBound(t), nil
}

// formatBound renders a bound in key's units for display.
func formatBound(key incident.FilterKey, b float64) string {
	if key == incident.ByYear {
		return strconv.Itoa(int(b))
	}
	return incident.BoundTime(b).Format("2006-01-02 15:04")
}

// formatRange renders r as "from .. to".
func formatRange(key incident.FilterKey, r incident.Range) string {
	return formatBound(key, r.Lower) + " .. " + formatBound(key, r.Upper)
}

// writeJSON writes v to stdout as indented JSON.
func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var result strings.Builder
	if neg {
		result.WriteString("-")
	}
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// formatPercent formats a 0..1 rate as a percentage.
func formatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// displayCategory shows the missing category as a placeholder.
func displayCategory(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with "~".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "~"
}
