//go:build !wasm

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/revoverflow/walker/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	return db, nil
}

// AddScan records a scan run.
func (s *SQLiteStore) AddScan(scan ScanRecord) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO scans (id, started_at) VALUES (?, ?)",
		scan.ID, scan.StartedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting scan: %w", err)
	}
	return nil
}

// AddBuffer stores a buffer record.
func (s *SQLiteStore) AddBuffer(id types.BufferID, size int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO buffers (id, size) VALUES (?, ?)", id.Hex(), size)
	if err != nil {
		return fmt.Errorf("inserting buffer: %w", err)
	}
	return nil
}

// AddProvenance associates provenance with a buffer.
func (s *SQLiteStore) AddProvenance(bufferID types.BufferID, prov types.Provenance) error {
	row, err := toProvenanceRow(prov)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO provenance (buffer_id, type, path, container, member, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, bufferID.Hex(), row.Kind, row.Path, row.Container, row.Member, row.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// AddStructure stores a structure record.
func (s *SQLiteStore) AddStructure(st *types.Structure) error {
	rec := newStructureRecord(st)
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO structures (id, name, description, field_count, size)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.Description, rec.Fields, rec.Size)
	if err != nil {
		return fmt.Errorf("inserting structure: %w", err)
	}
	return nil
}

// AddResult stores a result record.
func (s *SQLiteStore) AddResult(scanID string, r types.Result) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO results (scan_id, buffer_id, structure_id, offset_start, size, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, scanID, r.BufferID.Hex(), r.StructureID, r.Offset, r.Size, r.Data)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

const selectResults = `
	SELECT r.scan_id, r.buffer_id, r.structure_id, r.offset_start, r.size, r.data,
	       (SELECT p.path FROM provenance p WHERE p.buffer_id = r.buffer_id ORDER BY p.id LIMIT 1)
	FROM results r
`

const orderResults = ` ORDER BY r.buffer_id, r.structure_id, r.offset_start`

// GetResults retrieves every result ordered by buffer, structure and offset.
func (s *SQLiteStore) GetResults() ([]*types.StoredResult, error) {
	return s.queryResults(selectResults + orderResults)
}

// GetBufferResults retrieves results for one buffer.
func (s *SQLiteStore) GetBufferResults(id types.BufferID) ([]*types.StoredResult, error) {
	return s.queryResults(selectResults+" WHERE r.buffer_id = ?"+orderResults, id.Hex())
}

func (s *SQLiteStore) queryResults(query string, args ...any) ([]*types.StoredResult, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []*types.StoredResult
	for rows.Next() {
		var r types.StoredResult
		var scanID, source sql.NullString
		var bufferHex string

		if err := rows.Scan(&scanID, &bufferHex, &r.StructureID, &r.Offset, &r.Size, &r.Data, &source); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}

		if r.BufferID, err = types.ParseBufferID(bufferHex); err != nil {
			return nil, fmt.Errorf("parsing buffer ID: %w", err)
		}
		r.ScanID = scanID.String
		r.Source = source.String
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// GetProvenance retrieves every provenance record of a buffer.
func (s *SQLiteStore) GetProvenance(id types.BufferID) ([]types.Provenance, error) {
	rows, err := s.db.Query(`
		SELECT type, path, container, member, timestamp
		FROM provenance
		WHERE buffer_id = ?
		ORDER BY id
	`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}
	defer rows.Close()

	provs := []types.Provenance{}
	for rows.Next() {
		var row provenanceRow
		if err := rows.Scan(&row.Kind, &row.Path, &row.Container, &row.Member, &row.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning provenance: %w", err)
		}
		prov, err := row.provenance()
		if err != nil {
			return nil, err
		}
		provs = append(provs, prov)
	}
	return provs, rows.Err()
}

// GetStructures retrieves stored structure records ordered by id.
func (s *SQLiteStore) GetStructures() ([]StructureRecord, error) {
	rows, err := s.db.Query("SELECT id, name, description, field_count, size FROM structures ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying structures: %w", err)
	}
	defer rows.Close()

	var records []StructureRecord
	for rows.Next() {
		var rec StructureRecord
		var description sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Name, &description, &rec.Fields, &rec.Size); err != nil {
			return nil, fmt.Errorf("scanning structure: %w", err)
		}
		rec.Description = description.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetScans retrieves scan runs ordered by start time.
func (s *SQLiteStore) GetScans() ([]ScanRecord, error) {
	rows, err := s.db.Query("SELECT id, started_at FROM scans ORDER BY started_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var scans []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var started string
		if err := rows.Scan(&rec.ID, &started); err != nil {
			return nil, fmt.Errorf("scanning scan: %w", err)
		}
		if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing scan start: %w", err)
		}
		scans = append(scans, rec)
	}
	return scans, rows.Err()
}

// BufferExists checks if a buffer has already been scanned.
func (s *SQLiteStore) BufferExists(id types.BufferID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM buffers WHERE id = ?", id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking buffer existence: %w", err)
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
