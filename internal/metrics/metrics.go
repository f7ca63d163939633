// Package metrics instruments storage operations with Prometheus collectors.
//
// Paytrack runs as a short-lived command, so metrics are not scraped; they
// are written in the text exposition format to a file that a node exporter
// textfile collector can pick up.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

// Metrics owns a registry and the store collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	ops      *prometheus.CounterVec
	errs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paytrack",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Table operations by backend and operation.",
		}, []string{"backend", "op"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paytrack",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed table operations by backend, operation and error kind.",
		}, []string{"backend", "op", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paytrack",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Latency of table operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"backend", "op"}),
	}
	m.Registry.MustRegister(m.ops, m.errs, m.duration)
	return m
}

// Instrument wraps next so every operation is counted and timed under backend.
func (m *Metrics) Instrument(next storage.Store, backend string) storage.Store {
	return &instrumentedStore{next: next, m: m, backend: backend}
}

// WriteFile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

func (m *Metrics) observe(backend, op string, start time.Time, err error) {
	m.ops.WithLabelValues(backend, op).Inc()
	m.duration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errs.WithLabelValues(backend, op, errorKind(err)).Inc()
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrIO):
		return "io"
	default:
		return "other"
	}
}

type instrumentedStore struct {
	next    storage.Store
	m       *Metrics
	backend string
}

func (s *instrumentedStore) Load(ctx context.Context, id storage.TableID, schema storage.Schema) (*storage.Table, error) {
	start := time.Now()
	t, err := s.next.Load(ctx, id, schema)
	s.m.observe(s.backend, "load", start, err)
	return t, err
}

func (s *instrumentedStore) Save(ctx context.Context, id storage.TableID, t *storage.Table) error {
	start := time.Now()
	err := s.next.Save(ctx, id, t)
	s.m.observe(s.backend, "save", start, err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, id storage.TableID) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.m.observe(s.backend, "delete", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
