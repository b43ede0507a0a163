package config

import (
	"github.com/runnerr0/incidentlens/internal/incident"
	"github.com/runnerr0/incidentlens/internal/loader"
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			CSVPath:       "",
			ArrestLiteral: loader.DefaultArrestLiteral,
			DateLayout:    loader.DefaultDateLayout,
			MinYear:       0,
			MaxYear:       0,
			RequireCoords: false,
		},
		Storage: StorageConfig{
			Path:              "~/.config/incidentlens",
			SQLiteFile:        "incidents.db",
			SQLiteJournalMode: "wal",
		},
		Filter: FilterConfig{
			Mode: "date",
		},
		Dashboard: DashboardConfig{
			TopN: incident.DefaultTopN,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoaderOptions converts the dataset section into loader options.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		ArrestLiteral: c.Dataset.ArrestLiteral,
		DateLayout:    c.Dataset.DateLayout,
		MinYear:       c.Dataset.MinYear,
		MaxYear:       c.Dataset.MaxYear,
		RequireCoords: c.Dataset.RequireCoords,
	}
}
