//go:build !wasm

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/revoverflow/walker/pkg/types"
)

var postgresTables = []string{
	`CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS buffers (
		id TEXT PRIMARY KEY,
		size BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS structures (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		field_count INTEGER NOT NULL,
		size INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		id BIGSERIAL PRIMARY KEY,
		scan_id TEXT,
		buffer_id TEXT NOT NULL REFERENCES buffers(id),
		structure_id TEXT NOT NULL,
		offset_start BIGINT NOT NULL,
		size INTEGER NOT NULL,
		data BYTEA,
		UNIQUE (buffer_id, structure_id, offset_start)
	)`,
	`CREATE TABLE IF NOT EXISTS provenance (
		id BIGSERIAL PRIMARY KEY,
		buffer_id TEXT NOT NULL REFERENCES buffers(id),
		type TEXT NOT NULL,
		path TEXT NOT NULL,
		container TEXT,
		member TEXT,
		timestamp TEXT,
		UNIQUE (buffer_id, type, path)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_provenance_buffer_id ON provenance(buffer_id)`,
}

// PostgresStore implements Store on a shared PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
	ctx  context.Context
}

// NewPostgres connects to url and creates the schema if needed.
func NewPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	for _, ddl := range postgresTables {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &PostgresStore{pool: pool, ctx: ctx}, nil
}

// AddScan records a scan run.
func (s *PostgresStore) AddScan(scan ScanRecord) error {
	_, err := s.pool.Exec(s.ctx,
		"INSERT INTO scans (id, started_at) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		scan.ID, scan.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting scan: %w", err)
	}
	return nil
}

// AddBuffer stores a buffer record.
func (s *PostgresStore) AddBuffer(id types.BufferID, size int64) error {
	_, err := s.pool.Exec(s.ctx,
		"INSERT INTO buffers (id, size) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		id.Hex(), size)
	if err != nil {
		return fmt.Errorf("inserting buffer: %w", err)
	}
	return nil
}

// AddProvenance associates provenance with a buffer.
func (s *PostgresStore) AddProvenance(bufferID types.BufferID, prov types.Provenance) error {
	row, err := toProvenanceRow(prov)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(s.ctx, `
		INSERT INTO provenance (buffer_id, type, path, container, member, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`, bufferID.Hex(), row.Kind, row.Path, row.Container, row.Member, row.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// AddStructure stores a structure record.
func (s *PostgresStore) AddStructure(st *types.Structure) error {
	rec := newStructureRecord(st)
	_, err := s.pool.Exec(s.ctx, `
		INSERT INTO structures (id, name, description, field_count, size)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`, rec.ID, rec.Name, rec.Description, rec.Fields, rec.Size)
	if err != nil {
		return fmt.Errorf("inserting structure: %w", err)
	}
	return nil
}

// AddResult stores a result record.
func (s *PostgresStore) AddResult(scanID string, r types.Result) error {
	_, err := s.pool.Exec(s.ctx, `
		INSERT INTO results (scan_id, buffer_id, structure_id, offset_start, size, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`, scanID, r.BufferID.Hex(), r.StructureID, int64(r.Offset), r.Size, r.Data)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

const pgSelectResults = `
	SELECT r.scan_id, r.buffer_id, r.structure_id, r.offset_start, r.size, r.data,
	       (SELECT p.path FROM provenance p WHERE p.buffer_id = r.buffer_id ORDER BY p.id LIMIT 1)
	FROM results r
`

// GetResults retrieves every result ordered by buffer, structure and offset.
func (s *PostgresStore) GetResults() ([]*types.StoredResult, error) {
	return s.queryResults(pgSelectResults + orderResults)
}

// GetBufferResults retrieves results for one buffer.
func (s *PostgresStore) GetBufferResults(id types.BufferID) ([]*types.StoredResult, error) {
	return s.queryResults(pgSelectResults+" WHERE r.buffer_id = $1"+orderResults, id.Hex())
}

func (s *PostgresStore) queryResults(query string, args ...any) ([]*types.StoredResult, error) {
	rows, err := s.pool.Query(s.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []*types.StoredResult
	for rows.Next() {
		var r types.StoredResult
		var scanID, source *string
		var bufferHex string
		var offset int64

		if err := rows.Scan(&scanID, &bufferHex, &r.StructureID, &offset, &r.Size, &r.Data, &source); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}

		if r.BufferID, err = types.ParseBufferID(bufferHex); err != nil {
			return nil, fmt.Errorf("parsing buffer ID: %w", err)
		}
		r.Offset = int(offset)
		if scanID != nil {
			r.ScanID = *scanID
		}
		if source != nil {
			r.Source = *source
		}
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// GetProvenance retrieves every provenance record of a buffer.
func (s *PostgresStore) GetProvenance(id types.BufferID) ([]types.Provenance, error) {
	rows, err := s.pool.Query(s.ctx, `
		SELECT type, path, container, member, timestamp
		FROM provenance
		WHERE buffer_id = $1
		ORDER BY id
	`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}

	rowsOut, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (provenanceRow, error) {
		var row provenanceRow
		err := r.Scan(&row.Kind, &row.Path, &row.Container, &row.Member, &row.Timestamp)
		return row, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning provenance: %w", err)
	}

	provs := make([]types.Provenance, 0, len(rowsOut))
	for _, row := range rowsOut {
		prov, err := row.provenance()
		if err != nil {
			return nil, err
		}
		provs = append(provs, prov)
	}
	return provs, nil
}

// GetStructures retrieves stored structure records ordered by id.
func (s *PostgresStore) GetStructures() ([]StructureRecord, error) {
	rows, err := s.pool.Query(s.ctx, "SELECT id, name, COALESCE(description, ''), field_count, size FROM structures ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying structures: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (StructureRecord, error) {
		var rec StructureRecord
		err := r.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Fields, &rec.Size)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning structures: %w", err)
	}
	return records, nil
}

// GetScans retrieves scan runs ordered by start time.
func (s *PostgresStore) GetScans() ([]ScanRecord, error) {
	rows, err := s.pool.Query(s.ctx, "SELECT id, started_at FROM scans ORDER BY started_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	scans, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (ScanRecord, error) {
		var rec ScanRecord
		err := r.Scan(&rec.ID, &rec.StartedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning scans: %w", err)
	}
	return scans, nil
}

// BufferExists checks if a buffer has already been scanned.
func (s *PostgresStore) BufferExists(id types.BufferID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(s.ctx, "SELECT EXISTS (SELECT 1 FROM buffers WHERE id = $1)", id.Hex()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking buffer existence: %w", err)
	}
	return exists, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
