package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revoverflow/walker/pkg/store"
	"github.com/revoverflow/walker/pkg/types"
)

const bangDescriptor = `[{"type": "bytes", "size": 8, "criterias": [{"type": "match", "value": "21 21 21 21 21 21 21 21"}]}]`

func TestNewCore_Builtin(t *testing.T) {
	// Act
	core, err := NewCore("", nil)
	require.NoError(t, err)
	defer core.Close()

	// Assert
	builtin, err := GetBuiltinStructures()
	require.NoError(t, err)
	assert.Len(t, core.Structures(), len(builtin))
	assert.NotEmpty(t, core.ScanID())
}

func TestNewCore_InvalidDescriptor(t *testing.T) {
	_, err := NewCore("{not: [valid", nil)

	assert.ErrorIs(t, err, types.ErrConfig)
}

func TestCore_Scan(t *testing.T) {
	// Arrange
	core, err := NewCore(bangDescriptor, nil)
	require.NoError(t, err)
	defer core.Close()
	content := []byte("test!!!!!!!!test!!!!!!!!")

	// Act
	result, err := core.Scan(content, "inline:1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "inline:1", result.Source)
	assert.Equal(t, types.ComputeBufferID(content), result.BufferID)
	assert.Equal(t, []int{4, 16}, offsets(result.Results))

	stored, err := core.Store().GetResults()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, core.ScanID(), stored[0].ScanID)
	assert.Equal(t, "inline:1", stored[0].Source)
	assert.Equal(t, "inline", stored[0].StructureID)
}

func TestCore_ScanBatch(t *testing.T) {
	// Arrange
	core, err := NewCore(bangDescriptor, nil)
	require.NoError(t, err)
	defer core.Close()

	// Act
	batch, err := core.ScanBatch([]ContentItem{
		{Source: "a", Content: []byte("!!!!!!!!")},
		{Source: "b", Content: []byte("nothing here")},
		{Source: "c", Content: []byte("!!!!!!!!!")},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, []int{0}, offsets(batch.Results[0].Results))
	assert.Empty(t, batch.Results[1].Results)
	assert.Equal(t, []int{0, 1}, offsets(batch.Results[2].Results))
}

func TestCore_PrefilterDoesNotChangeResults(t *testing.T) {
	structures := []*types.Structure{
		{ID: "bang", Fields: []types.Field{bytesField(8, "21 21 21 21 21 21 21 21")}},
		{ID: "magic", Fields: []types.Field{
			types.MustField(types.PrimitiveUint16, 0,
				types.MustCriterion(types.CriteriaEqual, types.PrimitiveUint16, types.NumberOf[uint16](0x5a4d))),
		}},
	}
	buffers := [][]byte{
		[]byte("test!!!!!!!!test!!!!!!!!"),
		[]byte("MZ........!!!!!!!!"),
		[]byte("no anchors at all"),
	}

	for _, buf := range buffers {
		// Arrange
		plain, err := NewCoreWithConfig(CoreConfig{Structures: structures})
		require.NoError(t, err)
		filtered, err := NewCoreWithConfig(CoreConfig{Structures: structures, Prefilter: true})
		require.NoError(t, err)

		// Act
		want, err := plain.ScanBuffer(buf, types.ComputeBufferID(buf), nil)
		require.NoError(t, err)
		got, err := filtered.ScanBuffer(buf, types.ComputeBufferID(buf), nil)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, want, got, "buffer %q", buf)
	}
}

func TestNewCoreWithConfig_Structures(t *testing.T) {
	t.Run("duplicate ids rejected", func(t *testing.T) {
		s := &types.Structure{ID: "dup", Fields: []types.Field{bytesField(2, "41 41")}}

		_, err := NewCoreWithConfig(CoreConfig{Structures: []*types.Structure{s, s}})

		assert.ErrorIs(t, err, types.ErrConfig)
	})

	t.Run("structure without fields dropped", func(t *testing.T) {
		recorder := &types.DiagnosticsRecorder{}
		structures := []*types.Structure{
			{ID: "empty"},
			{ID: "ok", Fields: []types.Field{bytesField(2, "41 41")}},
		}

		core, err := NewCoreWithConfig(CoreConfig{Structures: structures, Diagnostics: recorder})

		require.NoError(t, err)
		require.Len(t, core.Structures(), 1)
		assert.Equal(t, "ok", core.Structures()[0].ID)
		require.Len(t, recorder.ConfigIssues(), 1)
		assert.Equal(t, "empty", recorder.ConfigIssues()[0].Structure)
	})
}

func TestNewCoreWithConfig_RecordsScanAndStructures(t *testing.T) {
	// Arrange
	s := store.NewMemory()
	structures := []*types.Structure{{ID: "ok", Name: "Two As", Fields: []types.Field{bytesField(2, "41 41")}}}

	// Act
	core, err := NewCoreWithConfig(CoreConfig{Structures: structures, Store: s})
	require.NoError(t, err)

	// Assert
	scans, err := s.GetScans()
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, core.ScanID(), scans[0].ID)

	records, err := s.GetStructures()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Two As", records[0].Name)
	assert.Equal(t, 2, records[0].Size)
}
