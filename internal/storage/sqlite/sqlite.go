// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
//
// It keeps the same tables the CSV backend writes to individual files inside
// a single database, which is convenient when the data directory has to be
// shipped or backed up as one file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/paytrack/internal/models"
	"github.com/mmynk/paytrack/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w: %w", models.ErrIO, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", models.ErrIO, err)
	}
	// A single connection keeps the foreign_keys pragma in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w: %w", models.ErrIO, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w: %w", models.ErrIO, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load retrieves a table and its rows. An unknown table id yields an empty
// table with the columns of schema.
func (s *SQLiteStore) Load(ctx context.Context, id storage.TableID, schema storage.Schema) (*storage.Table, error) {
	var rawColumns string
	err := s.db.QueryRowContext(ctx,
		"SELECT columns FROM tables WHERE id = ?",
		string(id),
	).Scan(&rawColumns)
	if err == sql.ErrNoRows {
		return storage.NewTable(schema), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table %q: %w: %w", id, models.ErrIO, err)
	}

	var columns []string
	if err := json.Unmarshal([]byte(rawColumns), &columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns of %q: %w: %w", id, models.ErrIO, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT cells FROM table_rows WHERE table_id = ? ORDER BY position",
		string(id),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of %q: %w: %w", id, models.ErrIO, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		var rawCells string
		if err := rows.Scan(&rawCells); err != nil {
			return nil, fmt.Errorf("failed to scan row of %q: %w: %w", id, models.ErrIO, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(rawCells), &cells); err != nil {
			return nil, fmt.Errorf("failed to decode row of %q: %w: %w", id, models.ErrIO, err)
		}
		records = append(records, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of %q: %w: %w", id, models.ErrIO, err)
	}

	return storage.FromRecords(columns, records), nil
}

// Save replaces the table and all of its rows in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, id storage.TableID, t *storage.Table) error {
	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns of %q: %w: %w", id, models.ErrIO, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", models.ErrIO, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tables (id, columns, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET columns = excluded.columns, updated_at = excluded.updated_at`,
		string(id), string(columns), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert table %q: %w: %w", id, models.ErrIO, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM table_rows WHERE table_id = ?", string(id)); err != nil {
		return fmt.Errorf("failed to clear rows of %q: %w: %w", id, models.ErrIO, err)
	}

	for i, rec := range t.Records() {
		cells, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode row of %q: %w: %w", id, models.ErrIO, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO table_rows (table_id, position, cells) VALUES (?, ?, ?)",
			string(id), i, string(cells),
		)
		if err != nil {
			return fmt.Errorf("failed to insert row of %q: %w: %w", id, models.ErrIO, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w: %w", models.ErrIO, err)
	}

	return nil
}

// Delete removes a table and its rows.
func (s *SQLiteStore) Delete(ctx context.Context, id storage.TableID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", models.ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM table_rows WHERE table_id = ?", string(id)); err != nil {
		return fmt.Errorf("failed to delete rows of %q: %w: %w", id, models.ErrIO, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM tables WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete table %q: %w: %w", id, models.ErrIO, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete table %q: %w: %w", id, models.ErrIO, err)
	}
	if n == 0 {
		return fmt.Errorf("table %q: %w", id, models.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w: %w", models.ErrIO, err)
	}
	return nil
}
