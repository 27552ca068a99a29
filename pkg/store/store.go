// Package store persists scan runs, scanned buffers and structure results.
package store

import (
	"strings"
	"time"

	"github.com/revoverflow/walker/pkg/types"
)

// Store provides persistence for scan results.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (memory, SQLite, PostgreSQL).
type Store interface {
	// AddScan records a scan run.
	AddScan(scan ScanRecord) error

	// AddBuffer stores a buffer record.
	AddBuffer(id types.BufferID, size int64) error

	// AddProvenance associates provenance with a buffer.
	AddProvenance(bufferID types.BufferID, prov types.Provenance) error

	// AddStructure stores the layout a result refers to.
	AddStructure(s *types.Structure) error

	// AddResult stores a result. Its data is copied. A result already
	// stored for the same buffer, structure and offset is ignored.
	AddResult(scanID string, r types.Result) error

	// GetResults retrieves every result ordered by buffer, structure and
	// offset.
	GetResults() ([]*types.StoredResult, error)

	// GetBufferResults retrieves results for one buffer.
	GetBufferResults(id types.BufferID) ([]*types.StoredResult, error)

	// GetProvenance retrieves every provenance record of a buffer.
	GetProvenance(id types.BufferID) ([]types.Provenance, error)

	// GetStructures retrieves stored structure records ordered by id.
	GetStructures() ([]StructureRecord, error)

	// GetScans retrieves scan runs ordered by start time.
	GetScans() ([]ScanRecord, error)

	// BufferExists checks if a buffer has already been scanned.
	BufferExists(id types.BufferID) (bool, error)

	// Close closes the database connection.
	Close() error
}

// ScanRecord is one scan run.
type ScanRecord struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// StructureRecord summarizes a stored structure.
type StructureRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Fields      int    `json:"fields"`
	Size        int    `json:"size"`
}

// Config for store initialization.
type Config struct {
	// Path selects the backend: "" or ":memory:" for the in-memory store,
	// a postgres:// URL for PostgreSQL, anything else is a SQLite file.
	Path string
}

// IsMemoryPath reports whether path selects the in-memory store.
func IsMemoryPath(path string) bool {
	return path == "" || path == ":memory:"
}

// IsPostgresURL reports whether path selects the PostgreSQL store.
func IsPostgresURL(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

func newStructureRecord(s *types.Structure) StructureRecord {
	size := 0
	for _, f := range s.Fields {
		size += f.Width()
	}
	return StructureRecord{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Fields:      len(s.Fields),
		Size:        size,
	}
}

// timeLayout is a fixed-width RFC 3339 layout so stored timestamps sort as
// text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
