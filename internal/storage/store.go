// Package storage provides abstractions for durable, row-oriented table storage.
package storage

import (
	"context"
	"errors"
)

// ErrDuplicateKey is returned when a lookup by key matches more than one row.
// It signals a corrupted table; the repositories never write duplicates.
var ErrDuplicateKey = errors.New("duplicate key")

// TableID names a table. Ids are slash-separated relative names such as
// "persons" or "payments/<group id>"; backends map them to their own locations.
type TableID string

// Store defines the interface for table storage operations.
// This abstraction allows swapping storage backends (CSV files, SQLite)
// without changing the repository layer.
type Store interface {
	// Load reads the table. A table that does not exist yet is not an error:
	// Load returns an empty table with the columns of schema.
	Load(ctx context.Context, id TableID, schema Schema) (*Table, error)

	// Save overwrites the table with t, creating it if needed.
	Save(ctx context.Context, id TableID, t *Table) error

	// Delete removes the table entirely.
	// Returns an error wrapping models.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id TableID) error

	// Close releases any resources held by the store.
	Close() error
}
