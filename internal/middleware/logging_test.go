package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
	"github.com/mmynk/paytrack/internal/storage/csvfile"
)

func TestLoggingStore(t *testing.T) {
	inner, err := csvfile.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := Logging(inner, logger)
	defer store.Close()

	ctx := context.Background()
	schema := storage.Schema{Columns: []string{"members"}}

	t.Run("Successful operations log at debug with table and rows", func(t *testing.T) {
		buf.Reset()
		table := storage.NewTable(schema)
		table.Append(models.AttributesOf("members", "p1"))

		if err := store.Save(ctx, "groups/g1", table); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if _, err := store.Load(ctx, "groups/g1", schema); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"level=DEBUG", "op=save", "op=load", "table=groups/g1", "rows=1"} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected %q in log output:\n%s", want, out)
			}
		}
	})

	t.Run("Not found is logged as a warning and passed through", func(t *testing.T) {
		buf.Reset()
		err := store.Delete(ctx, "groups/missing")
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
		if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "op=delete") {
			t.Errorf("Unexpected log output:\n%s", out)
		}
	})

	t.Run("Other failures are logged as errors", func(t *testing.T) {
		buf.Reset()
		_, err := store.Load(ctx, "../escape", schema)
		if err == nil {
			t.Fatal("Expected an error")
		}
		if out := buf.String(); !strings.Contains(out, "level=ERROR") {
			t.Errorf("Unexpected log output:\n%s", out)
		}
	})
}
