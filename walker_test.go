package walker

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revoverflow/walker/pkg/types"
)

const bangDescriptor = `[
	{"type": "bytes", "size": 8, "criterias": [{"type": "match", "value": "21 21 21 21 21 21 21 21"}]}
]`

func bangScanner(t *testing.T, opts ...Option) *Scanner {
	t.Helper()
	structures, err := LoadStructures([]byte(bangDescriptor), "bang", nil)
	require.NoError(t, err)

	scanner, err := NewScanner(append([]Option{WithStructures(structures)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { scanner.Close() })
	return scanner
}

func TestNewScanner(t *testing.T) {
	scanner, err := NewScanner()
	require.NoError(t, err)
	defer scanner.Close()

	// Should have loaded builtin structures
	assert.GreaterOrEqual(t, scanner.StructureCount(), 3)
}

func TestScan(t *testing.T) {
	// Arrange
	scanner := bangScanner(t)
	content := []byte("AB" + strings.Repeat("!", 9) + "C")

	// Act
	results, err := scanner.Scan(content)

	// Assert
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Offset)
	assert.Equal(t, 3, results[1].Offset)
	assert.Equal(t, "bang", results[0].StructureID)
	assert.Equal(t, types.ComputeBufferID(content), results[0].BufferID)

	// Data is detached from the scanned buffer
	content[2] = 'X'
	assert.Equal(t, []byte("!!!!!!!!"), results[0].Data)
}

func TestScan_EmptyBuffer(t *testing.T) {
	scanner := bangScanner(t)

	results, err := scanner.Scan(nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScan_OptionsDoNotChangeResults(t *testing.T) {
	content := []byte(strings.Repeat("ab!!!!!!!!!!", 50))

	baseline, err := bangScanner(t).Scan(content)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts []Option
	}{
		{"parallel", []Option{WithWorkers(4)}},
		{"no prefilter", []Option{WithoutPrefilter()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := bangScanner(t, tt.opts...).Scan(content)
			require.NoError(t, err)
			assert.Equal(t, baseline, results)
		})
	}
}

func TestScan_ByteOrder(t *testing.T) {
	structures, err := LoadStructures([]byte(`[{"type": "uint16", "criterias": [{"type": "==", "value": 4660}]}]`), "word", nil)
	require.NoError(t, err)
	content := []byte{0x12, 0x34}

	little, err := NewScanner(WithStructures(structures))
	require.NoError(t, err)
	defer little.Close()
	big, err := NewScanner(WithStructures(structures), WithByteOrder(binary.BigEndian))
	require.NoError(t, err)
	defer big.Close()

	lr, err := little.Scan(content)
	require.NoError(t, err)
	br, err := big.Scan(content)
	require.NoError(t, err)

	assert.Empty(t, lr)
	require.Len(t, br, 1)
	assert.Equal(t, 0, br[0].Offset)
}

func TestScanFile(t *testing.T) {
	scanner := bangScanner(t)
	path := filepath.Join(t.TempDir(), "dump.bin")
	require.NoError(t, os.WriteFile(path, []byte("!!!!!!!!"), 0644))

	results, err := scanner.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Offset)
}

func TestScanFile_Missing(t *testing.T) {
	scanner := bangScanner(t)

	results, err := scanner.ScanFile(filepath.Join(t.TempDir(), "missing.bin"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInput))
	assert.Nil(t, results)
}

func TestLoadStructures_SkipsBadEntries(t *testing.T) {
	diag := &types.DiagnosticsRecorder{}
	doc := `[
	{"type": "mystery", "criterias": [{"type": "any"}]},
	{"type": "uint8", "criterias": [{"type": "any"}]}
]`

	structures, err := LoadStructures([]byte(doc), "partial", diag)

	require.NoError(t, err)
	require.Len(t, structures, 1)
	assert.Len(t, structures[0].Fields, 1)
	assert.NotEmpty(t, diag.ConfigIssues())
}

func TestLoadStructuresFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bang.json")
	require.NoError(t, os.WriteFile(path, []byte(bangDescriptor), 0644))

	structures, err := LoadStructuresFromFile(path, nil)
	require.NoError(t, err)
	require.Len(t, structures, 1)
	assert.Equal(t, "bang", structures[0].ID)
}

func TestStructures_ReturnsCopy(t *testing.T) {
	scanner := bangScanner(t)

	structures := scanner.Structures()
	structures[0] = nil

	assert.NotNil(t, scanner.Structures()[0])
}
