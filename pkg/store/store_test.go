package store

import (
	"time"

	"github.com/revoverflow/walker/pkg/types"
)

// fixture is a small scan: one buffer, one structure, results out of order.
type fixture struct {
	scan      ScanRecord
	buffer    []byte
	bufferID  types.BufferID
	structure *types.Structure
	results   []types.Result
	prov      types.Provenance
}

func newFixture() fixture {
	buffer := []byte("test!!!!!!!!test!!!!!!!!")
	id := types.ComputeBufferID(buffer)
	s := &types.Structure{
		ID:   "bang",
		Name: "Bang run",
		Fields: []types.Field{
			types.MustField(types.PrimitiveBytes, 8, types.MustCriterion(types.CriteriaAny, types.PrimitiveBytes, nil)),
		},
	}
	return fixture{
		scan:      ScanRecord{ID: "6f1c1e7e-9a53-4c41-8f1e-1f6f3b1a2c11", StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		buffer:    buffer,
		bufferID:  id,
		structure: s,
		results: []types.Result{
			{Offset: 16, Size: 8, Data: buffer[16:24], StructureID: "bang", BufferID: id},
			{Offset: 4, Size: 8, Data: buffer[4:12], StructureID: "bang", BufferID: id},
		},
		prov: types.FileProvenance{FilePath: "/tmp/dump.bin"},
	}
}

// load writes the fixture into s.
func (f fixture) load(s Store) error {
	if err := s.AddScan(f.scan); err != nil {
		return err
	}
	if err := s.AddBuffer(f.bufferID, int64(len(f.buffer))); err != nil {
		return err
	}
	if err := s.AddProvenance(f.bufferID, f.prov); err != nil {
		return err
	}
	if err := s.AddStructure(f.structure); err != nil {
		return err
	}
	for _, r := range f.results {
		if err := s.AddResult(f.scan.ID, r); err != nil {
			return err
		}
	}
	return nil
}
