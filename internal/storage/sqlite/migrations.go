package sqlite

import "database/sql"

// schema holds one row per table in `tables` and that table's rows in
// `table_rows`, ordered by position. Columns and cells are JSON string arrays,
// cells aligned on the owning table's columns.
const schema = `
CREATE TABLE IF NOT EXISTS tables (
    id TEXT PRIMARY KEY,
    columns TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS table_rows (
    table_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    cells TEXT NOT NULL,
    PRIMARY KEY (table_id, position),
    FOREIGN KEY (table_id) REFERENCES tables(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_table_rows_table_id ON table_rows(table_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
