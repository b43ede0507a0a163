package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/incidentlens/internal/incident"
)

// Default config file path.
const DefaultConfigPath = "~/.config/incidentlens/config.yaml"

// Config holds all incidentlens configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Storage   StorageConfig   `yaml:"storage"`
	Filter    FilterConfig    `yaml:"filter"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatasetConfig holds the CSV coercion rules used by import.
type DatasetConfig struct {
	CSVPath       string `yaml:"csv_path"`
	ArrestLiteral string `yaml:"arrest_literal"`
	DateLayout    string `yaml:"date_layout"`
	MinYear       int    `yaml:"min_year"`
	MaxYear       int    `yaml:"max_year"`
	RequireCoords bool   `yaml:"require_coords"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type FilterConfig struct {
	// Mode is "date" or "year".
	Mode string `yaml:"mode"`
}

type DashboardConfig struct {
	TopN int `yaml:"top_n"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML, or
// fails validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// An empty literal would make every missing boolean true.
	if cfg.Dataset.ArrestLiteral == "" {
		cfg.Dataset.ArrestLiteral = DefaultConfig().Dataset.ArrestLiteral
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at use.
func (c *Config) Validate() error {
	if _, err := incident.ParseFilterKey(c.Filter.Mode); err != nil {
		return fmt.Errorf("filter.mode: %w", err)
	}
	if c.Dashboard.TopN < 0 {
		return fmt.Errorf("dashboard.top_n must be >= 0, got %d", c.Dashboard.TopN)
	}
	if c.Dataset.MinYear != 0 && c.Dataset.MaxYear != 0 && c.Dataset.MinYear > c.Dataset.MaxYear {
		return fmt.Errorf("dataset.min_year %d is after dataset.max_year %d", c.Dataset.MinYear, c.Dataset.MaxYear)
	}
	return nil
}

// FilterKey returns the configured filter key. Validate has already
// rejected unknown modes.
func (c *Config) FilterKey() incident.FilterKey {
	k, _ := incident.ParseFilterKey(c.Filter.Mode)
	return k
}

// DBPath returns the SQLite file path with ~ expanded.
func (c *Config) DBPath() (string, error) {
	dir, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
