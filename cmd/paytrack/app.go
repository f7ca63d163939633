package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/mmynk/paytrack/internal/config"
	"github.com/mmynk/paytrack/internal/metrics"
	"github.com/mmynk/paytrack/internal/middleware"
	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
	"github.com/mmynk/paytrack/internal/storage/csvfile"
	"github.com/mmynk/paytrack/internal/storage/sqlite"
	"github.com/mmynk/paytrack/internal/tracker"
)

// app is what every command receives as its first Execute argument.
type app struct {
	tracker     *tracker.Tracker
	store       storage.Store
	metrics     *metrics.Metrics
	metricsFile string
}

// openApp opens the configured backend, wrapped with metrics and logging.
func openApp(cfg config.Config) (*app, error) {
	var (
		backend storage.Store
		err     error
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		backend, err = sqlite.New(cfg.SQLitePath)
	default:
		backend, err = csvfile.New(cfg.DataDir)
	}
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	store := middleware.Logging(m.Instrument(backend, cfg.Backend), slog.Default())

	return &app{
		tracker:     tracker.Open(store, cfg.Layout(), cfg.Defaults()),
		store:       store,
		metrics:     m,
		metricsFile: cfg.MetricsFile,
	}, nil
}

func (a *app) close() error {
	if a.metricsFile != "" {
		if err := a.metrics.WriteFile(a.metricsFile); err != nil {
			slog.Warn("Failed to write metrics", "path", a.metricsFile, "error", err)
		}
	}
	return a.store.Close()
}

// appFrom extracts the app passed to subcommands.Execute.
func appFrom(args []interface{}) *app {
	return args[0].(*app)
}

// fail prints err and maps its kind to an exit status: invalid input is a
// usage error, anything else a failure.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if errors.Is(err, models.ErrValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// usage prints a usage error for the command.
func usage(f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	f.Usage()
	return subcommands.ExitUsageError
}

// attrFlags collects repeated -attr key=value flags.
type attrFlags []string

func (a *attrFlags) String() string { return strings.Join(*a, ",") }

func (a *attrFlags) Set(v string) error {
	if k, _, ok := strings.Cut(v, "="); !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*a = append(*a, v)
	return nil
}

// attributes builds the attribute set for a new entity: name first, then the
// -attr pairs in order.
func (a attrFlags) attributes(name string) models.Attributes {
	var attrs models.Attributes
	if name != "" {
		attrs.Set(models.AttrName, name)
	}
	for _, kv := range a {
		k, v, _ := strings.Cut(kv, "=")
		attrs.Set(k, v)
	}
	return attrs
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
