// Package csvfile provides a CSV flat-file implementation of the storage.Store interface.
//
// Every table lives in its own file, <base>/<table id>.csv, with a header row
// naming the columns. A missing file is an empty table.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

// Ensure FileStore implements storage.Store
var _ storage.Store = (*FileStore)(nil)

const ext = ".csv"

// FileStore implements storage.Store with one CSV file per table.
type FileStore struct {
	base string
}

// New creates a FileStore rooted at base, creating the directory if needed.
func New(base string) (*FileStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w: %w", models.ErrIO, err)
	}
	return &FileStore{base: base}, nil
}

// Close is a no-op; files are opened and closed per operation.
func (s *FileStore) Close() error {
	return nil
}

// Path returns the file backing table id.
func (s *FileStore) Path(id storage.TableID) (string, error) {
	rel := filepath.FromSlash(string(id))
	if id == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid table id %q: %w", id, models.ErrValidation)
	}
	return filepath.Join(s.base, rel+ext), nil
}

// Load reads the table from its CSV file.
func (s *FileStore) Load(_ context.Context, id storage.TableID, schema storage.Schema) (*storage.Table, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return storage.NewTable(schema), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open table %q: %w: %w", id, models.ErrIO, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w: %w", id, models.ErrIO, err)
	}
	if len(records) == 0 {
		return storage.NewTable(schema), nil
	}

	return storage.FromRecords(records[0], records[1:]), nil
}

// Save writes the table to a temporary file next to its destination and
// renames it into place, so readers never observe a half-written table.
func (s *FileStore) Save(_ context.Context, id storage.TableID, t *storage.Table) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w: %w", id, models.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w: %w", id, models.ErrIO, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header of %q: %w: %w", id, models.ErrIO, err)
	}
	if err := w.WriteAll(t.Records()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write rows of %q: %w: %w", id, models.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close table %q: %w: %w", id, models.ErrIO, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace table %q: %w: %w", id, models.ErrIO, err)
	}
	return nil
}

// Delete removes the table's file.
func (s *FileStore) Delete(_ context.Context, id storage.TableID) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("table %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete table %q: %w: %w", id, models.ErrIO, err)
	}
	return nil
}
