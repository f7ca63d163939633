package storage

import (
	"fmt"
	"slices"

	"github.com/mmynk/paytrack/internal/models"
)

// Row is one table row: an ordered set of column/value cells.
type Row = models.Attributes

// Schema describes the columns a table starts with and, for master tables,
// the column that uniquely identifies each row.
type Schema struct {
	// Key is the identifying column; empty for tables without one.
	Key string

	// Columns are the columns of an empty table.
	Columns []string
}

// With returns a copy of s with extra columns appended.
func (s Schema) With(columns ...string) Schema {
	cols := slices.Clone(s.Columns)
	for _, c := range columns {
		if !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	return Schema{Key: s.Key, Columns: cols}
}

// Table is an in-memory, row-oriented table.
// Rows may carry different column sets; the table's Columns is the union,
// in order of first appearance, and absent cells read as "".
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable returns an empty table with the columns of schema.
func NewTable(schema Schema) *Table {
	return &Table{Columns: slices.Clone(schema.Columns)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// AddColumn adds a column and sets it to fill in every existing row.
// It returns false, leaving the table untouched, if the column exists.
func (t *Table) AddColumn(name, fill string) bool {
	if t.HasColumn(name) {
		return false
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i].Set(name, fill)
	}
	return true
}

// Cell returns the value of column in row i, or "" if the row has no such cell.
func (t *Table) Cell(i int, column string) string {
	v, _ := t.Rows[i].Get(column)
	return v
}

// Column returns the values of one column, top to bottom.
func (t *Table) Column(name string) []string {
	out := make([]string, 0, len(t.Rows))
	for i := range t.Rows {
		out = append(out, t.Cell(i, name))
	}
	return out
}

// Append adds row at the bottom, extending Columns with any new cell names.
func (t *Table) Append(row Row) {
	t.extend(row)
	t.Rows = append(t.Rows, row.Clone())
}

// Upsert replaces the first row whose key column equals row's key value,
// in place, or appends row if there is none.
func (t *Table) Upsert(key string, row Row) error {
	value, ok := row.Get(key)
	if !ok {
		return fmt.Errorf("row has no %q cell: %w", key, models.ErrValidation)
	}
	i := t.Index(key, value)
	if i < 0 {
		t.Append(row)
		return nil
	}
	t.extend(row)
	t.Rows[i] = row.Clone()
	return nil
}

// Index returns the position of the first row whose key column equals value,
// or -1.
func (t *Table) Index(key, value string) int {
	for i := range t.Rows {
		if v, ok := t.Rows[i].Get(key); ok && v == value {
			return i
		}
	}
	return -1
}

// Find returns the single row whose key column equals value.
func (t *Table) Find(key, value string) (Row, error) {
	var found []int
	for i := range t.Rows {
		if v, ok := t.Rows[i].Get(key); ok && v == value {
			found = append(found, i)
		}
	}
	switch len(found) {
	case 0:
		return Row{}, fmt.Errorf("no row with %s %q: %w", key, value, models.ErrNotFound)
	case 1:
		return t.Rows[found[0]].Clone(), nil
	default:
		return Row{}, fmt.Errorf("%d rows with %s %q: %w", len(found), key, value, ErrDuplicateKey)
	}
}

// Remove deletes every row whose key column equals value and returns how many
// were removed.
func (t *Table) Remove(key, value string) int {
	before := len(t.Rows)
	t.Rows = slices.DeleteFunc(t.Rows, func(r Row) bool {
		v, ok := r.Get(key)
		return ok && v == value
	})
	return before - len(t.Rows)
}

// Tail returns the last n rows, or all rows if n <= 0 or n exceeds Len.
func (t *Table) Tail(n int) []Row {
	if n <= 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[len(t.Rows)-n:]
}

// Records returns the rows as string slices aligned on Columns.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for i := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = t.Cell(i, c)
		}
		out = append(out, rec)
	}
	return out
}

// FromRecords builds a table from a header and records aligned on it.
// Short records are padded with empty cells.
func FromRecords(header []string, records [][]string) *Table {
	t := &Table{Columns: slices.Clone(header)}
	for _, rec := range records {
		var row Row
		for j, c := range header {
			v := ""
			if j < len(rec) {
				v = rec[j]
			}
			row.Set(c, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) extend(row Row) {
	for _, k := range row.Keys() {
		if !t.HasColumn(k) {
			t.Columns = append(t.Columns, k)
		}
	}
}
