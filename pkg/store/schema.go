package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

var sqliteTables = []struct {
	name string
	ddl  string
}{
	{"scans", `
		CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY NOT NULL,
			started_at TEXT NOT NULL
		)`},
	{"buffers", `
		CREATE TABLE IF NOT EXISTS buffers (
			id TEXT PRIMARY KEY NOT NULL,
			size INTEGER NOT NULL
		)`},
	{"structures", `
		CREATE TABLE IF NOT EXISTS structures (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			field_count INTEGER NOT NULL,
			size INTEGER NOT NULL
		)`},
	{"results", `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id TEXT,
			buffer_id TEXT NOT NULL REFERENCES buffers(id),
			structure_id TEXT NOT NULL,
			offset_start INTEGER NOT NULL,
			size INTEGER NOT NULL,
			data BLOB,
			UNIQUE(buffer_id, structure_id, offset_start)
		)`},
	{"provenance", `
		CREATE TABLE IF NOT EXISTS provenance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			buffer_id TEXT NOT NULL REFERENCES buffers(id),
			type TEXT NOT NULL,
			path TEXT NOT NULL,
			container TEXT,
			member TEXT,
			timestamp TEXT,
			UNIQUE(buffer_id, type, path)
		)`},
}

// CreateSchema creates the SQLite schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	for _, table := range sqliteTables {
		if _, err := db.Exec(table.ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", table.name, err)
		}
	}

	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_provenance_buffer_id ON provenance(buffer_id)`)
	if err != nil {
		return fmt.Errorf("creating provenance index: %w", err)
	}
	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}
	return nil
}
