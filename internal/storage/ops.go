package storage

import (
	"context"
	"fmt"

	"github.com/mmynk/paytrack/internal/models"
)

// Append loads the table, adds row at the bottom and saves it.
func Append(ctx context.Context, s Store, id TableID, schema Schema, row Row) error {
	t, err := s.Load(ctx, id, schema)
	if err != nil {
		return err
	}
	t.Append(row)
	return s.Save(ctx, id, t)
}

// Upsert loads the table, replaces the row sharing row's schema.Key value (or
// appends it) and saves the table.
func Upsert(ctx context.Context, s Store, id TableID, schema Schema, row Row) error {
	t, err := s.Load(ctx, id, schema)
	if err != nil {
		return err
	}
	if err := t.Upsert(schema.Key, row); err != nil {
		return fmt.Errorf("failed to upsert into %q: %w", id, err)
	}
	return s.Save(ctx, id, t)
}

// RemoveRow loads the table, removes the row whose schema.Key equals key and
// saves the table. Returns an error wrapping models.ErrNotFound if no row matched.
func RemoveRow(ctx context.Context, s Store, id TableID, schema Schema, key string) error {
	t, err := s.Load(ctx, id, schema)
	if err != nil {
		return err
	}
	if t.Remove(schema.Key, key) == 0 {
		return fmt.Errorf("no row %q in %q: %w", key, id, models.ErrNotFound)
	}
	return s.Save(ctx, id, t)
}

// Lookup loads the table and returns the single row whose schema.Key equals key.
func Lookup(ctx context.Context, s Store, id TableID, schema Schema, key string) (Row, error) {
	t, err := s.Load(ctx, id, schema)
	if err != nil {
		return Row{}, err
	}
	row, err := t.Find(schema.Key, key)
	if err != nil {
		return Row{}, fmt.Errorf("lookup in %q: %w", id, err)
	}
	return row, nil
}
