// Package middleware provides storage.Store decorators.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

// Ensure LoggingStore implements storage.Store
var _ storage.Store = (*LoggingStore)(nil)

// LoggingStore logs every table operation it forwards to the wrapped store.
// Successful operations are logged at debug level. Not-found results are
// warnings; everything else is an error.
type LoggingStore struct {
	next   storage.Store
	logger *slog.Logger
}

// Logging wraps next. A nil logger means slog.Default().
func Logging(next storage.Store, logger *slog.Logger) *LoggingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingStore{next: next, logger: logger}
}

func (s *LoggingStore) Load(ctx context.Context, id storage.TableID, schema storage.Schema) (*storage.Table, error) {
	start := time.Now()
	t, err := s.next.Load(ctx, id, schema)
	rows := 0
	if t != nil {
		rows = t.Len()
	}
	s.log(ctx, "load", id, start, err, "rows", rows)
	return t, err
}

func (s *LoggingStore) Save(ctx context.Context, id storage.TableID, t *storage.Table) error {
	start := time.Now()
	err := s.next.Save(ctx, id, t)
	s.log(ctx, "save", id, start, err, "rows", t.Len())
	return err
}

func (s *LoggingStore) Delete(ctx context.Context, id storage.TableID) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.log(ctx, "delete", id, start, err)
	return err
}

func (s *LoggingStore) Close() error {
	return s.next.Close()
}

func (s *LoggingStore) log(ctx context.Context, op string, id storage.TableID, start time.Time, err error, extra ...any) {
	args := append([]any{
		"op", op,
		"table", string(id),
		"duration_ms", time.Since(start).Milliseconds(),
	}, extra...)

	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "Table op ok", args...)
	case errors.Is(err, models.ErrNotFound):
		s.logger.WarnContext(ctx, "Table op error", append(args, "error", err)...)
	default:
		s.logger.ErrorContext(ctx, "Table op error", append(args, "error", err)...)
	}
}
