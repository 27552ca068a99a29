package store

import (
	"sort"
	"sync"

	"github.com/revoverflow/walker/pkg/types"
)

type resultKey struct {
	buffer    types.BufferID
	structure string
	offset    int
}

// MemoryStore implements Store using in-memory data structures.
// Used by default for one-shot scans and for WASM builds.
type MemoryStore struct {
	mu         sync.RWMutex
	scans      map[string]ScanRecord
	buffers    map[types.BufferID]int64
	structures map[string]StructureRecord
	results    map[resultKey]*types.StoredResult
	provenance map[types.BufferID][]types.Provenance
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		scans:      make(map[string]ScanRecord),
		buffers:    make(map[types.BufferID]int64),
		structures: make(map[string]StructureRecord),
		results:    make(map[resultKey]*types.StoredResult),
		provenance: make(map[types.BufferID][]types.Provenance),
	}
}

// AddScan records a scan run.
func (m *MemoryStore) AddScan(scan ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.scans[scan.ID]; !exists {
		m.scans[scan.ID] = scan
	}
	return nil
}

// AddBuffer stores a buffer record. Idempotent.
func (m *MemoryStore) AddBuffer(id types.BufferID, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.buffers[id]; !exists {
		m.buffers[id] = size
	}
	return nil
}

// AddProvenance associates provenance with a buffer.
func (m *MemoryStore) AddProvenance(bufferID types.BufferID, prov types.Provenance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.provenance[bufferID] {
		if p.Kind() == prov.Kind() && p.Path() == prov.Path() {
			return nil
		}
	}
	m.provenance[bufferID] = append(m.provenance[bufferID], prov)
	return nil
}

// AddStructure stores a structure record.
func (m *MemoryStore) AddStructure(s *types.Structure) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.structures[s.ID]; !exists {
		m.structures[s.ID] = newStructureRecord(s)
	}
	return nil
}

// AddResult stores a copy of r.
func (m *MemoryStore) AddResult(scanID string, r types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := resultKey{buffer: r.BufferID, structure: r.StructureID, offset: r.Offset}
	if _, exists := m.results[key]; exists {
		return nil
	}
	m.results[key] = &types.StoredResult{Result: r.Detach(), ScanID: scanID}
	return nil
}

// GetResults retrieves every result ordered by buffer, structure and offset.
func (m *MemoryStore) GetResults() ([]*types.StoredResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collect(func(*types.StoredResult) bool { return true }), nil
}

// GetBufferResults retrieves results for one buffer.
func (m *MemoryStore) GetBufferResults(id types.BufferID) ([]*types.StoredResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collect(func(r *types.StoredResult) bool { return r.BufferID == id }), nil
}

// GetProvenance retrieves every provenance record of a buffer.
func (m *MemoryStore) GetProvenance(id types.BufferID) ([]types.Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provs := m.provenance[id]
	result := make([]types.Provenance, len(provs))
	copy(result, provs)
	return result, nil
}

// GetStructures retrieves stored structure records ordered by id.
func (m *MemoryStore) GetStructures() ([]StructureRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]StructureRecord, 0, len(m.structures))
	for _, s := range m.structures {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetScans retrieves scan runs ordered by start time.
func (m *MemoryStore) GetScans() ([]ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ScanRecord, 0, len(m.scans))
	for _, s := range m.scans {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.Before(result[j].StartedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// BufferExists checks if a buffer has already been scanned.
func (m *MemoryStore) BufferExists(id types.BufferID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.buffers[id]
	return exists, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// collect copies matching results with their first provenance path as
// Source. Callers hold the read lock.
func (m *MemoryStore) collect(keep func(*types.StoredResult) bool) []*types.StoredResult {
	result := make([]*types.StoredResult, 0, len(m.results))
	for _, r := range m.results {
		if !keep(r) {
			continue
		}
		out := *r
		if provs := m.provenance[r.BufferID]; len(provs) > 0 {
			out.Source = provs[0].Path()
		}
		result = append(result, &out)
	}
	sortResults(result)
	return result
}

func sortResults(results []*types.StoredResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.BufferID != b.BufferID {
			return a.BufferID.Hex() < b.BufferID.Hex()
		}
		if a.StructureID != b.StructureID {
			return a.StructureID < b.StructureID
		}
		return a.Offset < b.Offset
	})
}
