// Package config loads and validates Paytrack configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/repository"
	"github.com/mmynk/paytrack/internal/storage"
)

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config holds all configuration values for Paytrack.
// Values are populated by Load from environment variables.
type Config struct {
	// DataDir is the directory holding the tables. Defaults to "data/server".
	DataDir string

	// Backend selects the table store: "csv" (default) or "sqlite".
	Backend string

	// SQLitePath is the database file used by the sqlite backend.
	// Defaults to <DataDir>/paytrack.db.
	SQLitePath string

	// DefaultCurrency, DefaultPurpose and DefaultLocation fill in payments
	// that omit them.
	DefaultCurrency string
	DefaultPurpose  string
	DefaultLocation string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// MetricsFile, when set, receives store metrics after each command.
	MetricsFile string

	// Table locations relative to the store root. Defaults reproduce the
	// persons.csv, persons/, groups.csv, groups/, payments/ layout.
	PersonsTable string
	PersonsDir   string
	GroupsTable  string
	GroupsDir    string
	PaymentsDir  string
}

// Load reads an optional .env file from the working directory, then builds a
// Config from the environment. Variables already set take precedence over
// the .env file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the environment alone.
func FromEnv() Config {
	cfg := Config{
		DataDir:         getEnv("PAYTRACK_DATA_DIR", filepath.Join("data", "server")),
		Backend:         strings.ToLower(getEnv("PAYTRACK_BACKEND", BackendCSV)),
		DefaultCurrency: getEnv("PAYTRACK_DEFAULT_CURRENCY", "AUD"),
		DefaultPurpose:  getEnv("PAYTRACK_DEFAULT_PURPOSE", "General expense"),
		DefaultLocation: getEnv("PAYTRACK_DEFAULT_LOCATION", "Somewhere over the rainbow"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		MetricsFile:     os.Getenv("PAYTRACK_METRICS_FILE"),
		PersonsTable:    getEnv("PAYTRACK_PERSONS_TABLE", "persons"),
		PersonsDir:      getEnv("PAYTRACK_PERSONS_DIR", "persons"),
		GroupsTable:     getEnv("PAYTRACK_GROUPS_TABLE", "groups"),
		GroupsDir:       getEnv("PAYTRACK_GROUPS_DIR", "groups"),
		PaymentsDir:     getEnv("PAYTRACK_PAYMENTS_DIR", "payments"),
	}
	cfg.SQLitePath = getEnv("PAYTRACK_SQLITE_PATH", filepath.Join(cfg.DataDir, "paytrack.db"))
	return cfg
}

// Validate returns an error listing every invalid field.
func (c Config) Validate() error {
	var problems []string

	if c.DataDir == "" {
		problems = append(problems, "data directory must not be empty")
	}
	if !slices.Contains([]string{BackendCSV, BackendSQLite}, c.Backend) {
		problems = append(problems, fmt.Sprintf("invalid backend %q: must be %q or %q", c.Backend, BackendCSV, BackendSQLite))
	}
	if c.Backend == BackendSQLite && c.SQLitePath == "" {
		problems = append(problems, "sqlite backend requires PAYTRACK_SQLITE_PATH")
	}
	if len(c.DefaultCurrency) != 3 {
		problems = append(problems, fmt.Sprintf("invalid default currency %q: must be a 3-letter code", c.DefaultCurrency))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}

	locations := []struct{ name, value string }{
		{"persons table", c.PersonsTable},
		{"persons dir", c.PersonsDir},
		{"groups table", c.GroupsTable},
		{"groups dir", c.GroupsDir},
		{"payments dir", c.PaymentsDir},
	}
	for _, l := range locations {
		if l.value == "" || !filepath.IsLocal(filepath.FromSlash(l.value)) {
			problems = append(problems, fmt.Sprintf("invalid %s %q: must be a relative path inside the data directory", l.name, l.value))
		}
	}
	if c.PersonsTable == c.GroupsTable {
		problems = append(problems, "persons and groups tables must differ")
	}
	if c.PersonsDir == c.GroupsDir || c.PersonsDir == c.PaymentsDir || c.GroupsDir == c.PaymentsDir {
		problems = append(problems, "persons, groups and payments directories must differ")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s: %w", strings.Join(problems, "; "), models.ErrValidation)
	}
	return nil
}

// Defaults returns the payment defaults.
func (c Config) Defaults() models.Defaults {
	return models.Defaults{
		Currency: strings.ToUpper(c.DefaultCurrency),
		Purpose:  c.DefaultPurpose,
		Location: c.DefaultLocation,
	}
}

// Layout returns where the tables live inside the store.
func (c Config) Layout() repository.Layout {
	return repository.Layout{
		Persons:     storage.TableID(filepath.ToSlash(c.PersonsTable)),
		PersonsDir:  filepath.ToSlash(c.PersonsDir),
		Groups:      storage.TableID(filepath.ToSlash(c.GroupsTable)),
		GroupsDir:   filepath.ToSlash(c.GroupsDir),
		PaymentsDir: filepath.ToSlash(c.PaymentsDir),
	}
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
