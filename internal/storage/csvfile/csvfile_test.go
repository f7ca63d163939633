package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

func TestFileStore(t *testing.T) {
	base := t.TempDir()
	store, err := New(filepath.Join(base, "data"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	members := storage.Schema{Columns: []string{"members"}}

	t.Run("Load of missing file returns empty table with schema", func(t *testing.T) {
		table, err := store.Load(ctx, "groups/g1", members)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if table.Len() != 0 {
			t.Errorf("Expected no rows, got %d", table.Len())
		}
		if !slices.Equal(table.Columns, []string{"members"}) {
			t.Errorf("Columns mismatch: got %v", table.Columns)
		}
	})

	t.Run("Save creates nested directories and writes a header", func(t *testing.T) {
		table := storage.NewTable(members)
		table.Append(models.AttributesOf("members", "p1"))
		table.Append(models.AttributesOf("members", "p2"))

		if err := store.Save(ctx, "groups/g1", table); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		raw, err := os.ReadFile(filepath.Join(base, "data", "groups", "g1.csv"))
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if got, want := string(raw), "members\np1\np2\n"; got != want {
			t.Errorf("File content = %q, want %q", got, want)
		}
	})

	t.Run("Save leaves no temp files behind", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(base, "data", "groups"))
		if err != nil {
			t.Fatalf("Failed to list dir: %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") {
				t.Errorf("Unexpected temp file %s", e.Name())
			}
		}
	})

	t.Run("Load reads heterogeneous rows written by other tools", func(t *testing.T) {
		path := filepath.Join(base, "data", "persons.csv")
		content := "name,id,email\nAlice,p1,alice@example.com\nBob,p2\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}

		table, err := store.Load(ctx, "persons", storage.Schema{Key: "id", Columns: []string{"id", "name"}})
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !slices.Equal(table.Columns, []string{"name", "id", "email"}) {
			t.Errorf("Columns mismatch: got %v", table.Columns)
		}
		row, err := table.Find("id", "p2")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if row.Name() != "Bob" {
			t.Errorf("Name mismatch: got %q", row.Name())
		}
		if v, _ := row.Get("email"); v != "" {
			t.Errorf("Expected empty email, got %q", v)
		}
	})

	t.Run("Delete removes the file", func(t *testing.T) {
		if err := store.Delete(ctx, "groups/g1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(base, "data", "groups", "g1.csv")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected file to be gone, stat err = %v", err)
		}
	})

	t.Run("Delete of missing file returns ErrNotFound", func(t *testing.T) {
		err := store.Delete(ctx, "groups/g1")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Table ids escaping the base directory are rejected", func(t *testing.T) {
		for _, id := range []storage.TableID{"", "../outside", "/etc/passwd"} {
			if _, err := store.Load(ctx, id, members); !errors.Is(err, models.ErrValidation) {
				t.Errorf("Load(%q): expected ErrValidation, got %v", id, err)
			}
		}
	})
}
