//go:build !wasm

package store

import (
	"database/sql"
	"fmt"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the SQLite datastores to merge from.
	SourcePaths []string
	// DestPath is the destination datastore file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	ScansMerged      int
	BuffersMerged    int
	StructuresMerged int
	ResultsMerged    int
	ProvenanceMerged int
	SourcesProcessed int
}

// Merge combines multiple SQLite datastores into one.
// Deduplication is handled via INSERT OR IGNORE on unique keys.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	destDB, err := openSQLite(cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer destDB.Close()

	if err := CreateSchema(destDB); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		sourceStats, err := mergeFrom(destDB, sourcePath)
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.ScansMerged += sourceStats.ScansMerged
		stats.BuffersMerged += sourceStats.BuffersMerged
		stats.StructuresMerged += sourceStats.StructuresMerged
		stats.ResultsMerged += sourceStats.ResultsMerged
		stats.ProvenanceMerged += sourceStats.ProvenanceMerged
		stats.SourcesProcessed++
	}

	return stats, nil
}

// mergeTable copies one table. columns are selected from the source and
// inserted into the destination in the same order.
type mergeTable struct {
	name    string
	columns string
	count   func(*MergeStats) *int
}

var mergeTables = []mergeTable{
	{"scans", "id, started_at", func(s *MergeStats) *int { return &s.ScansMerged }},
	{"buffers", "id, size", func(s *MergeStats) *int { return &s.BuffersMerged }},
	{"structures", "id, name, description, field_count, size", func(s *MergeStats) *int { return &s.StructuresMerged }},
	{"results", "scan_id, buffer_id, structure_id, offset_start, size, data", func(s *MergeStats) *int { return &s.ResultsMerged }},
	{"provenance", "buffer_id, type, path, container, member, timestamp", func(s *MergeStats) *int { return &s.ProvenanceMerged }},
}

// mergeFrom copies data from a source database to the destination.
func mergeFrom(destDB *sql.DB, sourcePath string) (*MergeStats, error) {
	sourceDB, err := openSQLite(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer sourceDB.Close()

	stats := &MergeStats{}

	tx, err := destDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range mergeTables {
		n, err := copyRows(tx, sourceDB, table)
		if err != nil {
			return nil, fmt.Errorf("merging %s: %w", table.name, err)
		}
		*table.count(stats) = n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return stats, nil
}

func copyRows(tx *sql.Tx, sourceDB *sql.DB, table mergeTable) (int, error) {
	rows, err := sourceDB.Query(fmt.Sprintf("SELECT %s FROM %s", table.columns, table.name))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	placeholders := "?"
	for i := 1; i < len(cols); i++ {
		placeholders += ", ?"
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table.name, table.columns, placeholders))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, err
		}
		result, err := stmt.Exec(values...)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}
