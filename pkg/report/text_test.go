package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revoverflow/walker/pkg/types"
)

func resultsAt(offsets ...int) []types.Result {
	out := make([]types.Result, len(offsets))
	for i, o := range offsets {
		out[i] = types.Result{Offset: o, Size: 8}
	}
	return out
}

func TestWriteText(t *testing.T) {
	// Arrange
	var buf bytes.Buffer

	// Act
	err := WriteText(&buf, resultsAt(4, 16))

	// Assert
	require.NoError(t, err)
	want := "~ walker scan results ~\n" +
		"found 2 results\n" +
		"------------------------\n" +
		"0x4\n" +
		"0x10\n" +
		"------------------------\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteText(&buf, nil))

	assert.Equal(t, "~ walker scan results ~\nfound 0 results\n------------------------\n------------------------\n", buf.String())
}

func TestWriteText_LargeOffsetLowercase(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteText(&buf, resultsAt(0xABCDEF12)))

	assert.Contains(t, buf.String(), "\n0xabcdef12\n")
}

func TestWriteBlocks_Markers(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	blocks := []Block{
		{Source: "a.bin", Structure: "pe.dos_header", Results: resultsAt(0)},
		{Source: "b.bin", Structure: "elf.elf64_header"},
	}

	// Act
	require.NoError(t, WriteBlocks(&buf, blocks))

	// Assert
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# source: a.bin\n# structure: pe.dos_header\n~ walker scan results ~\n"))
	assert.Contains(t, out, "\n\n# source: b.bin\n# structure: elf.elf64_header\n")
	assert.Equal(t, 2, strings.Count(out, textHeader))
}

func TestTextRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int
	}{
		{name: "none", offsets: nil},
		{name: "one", offsets: []int{0}},
		{name: "several", offsets: []int{4, 16, 255, 4096, 1 << 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			require.NoError(t, WriteText(&buf, resultsAt(tt.offsets...)))

			// Act
			blocks, err := ParseText(&buf)

			// Assert
			require.NoError(t, err)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.offsets, blocks[0].Offsets)
		})
	}
}

func TestTextRoundTrip_Blocks(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	require.NoError(t, WriteBlocks(&buf, []Block{
		{Source: "a.bin", Structure: "s1", Results: resultsAt(1, 2)},
		{Source: "a.bin", Structure: "s2", Results: resultsAt(0x30)},
	}))

	// Act
	blocks, err := ParseText(&buf)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []ParsedBlock{
		{Source: "a.bin", Structure: "s1", Offsets: []int{1, 2}},
		{Source: "a.bin", Structure: "s2", Offsets: []int{0x30}},
	}, blocks)
}

func TestParseText_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing header", input: "found 1 results\n"},
		{name: "bad count", input: "~ walker scan results ~\nfound many results\n"},
		{name: "missing separator", input: "~ walker scan results ~\nfound 0 results\n0x1\n"},
		{name: "bad offset", input: "~ walker scan results ~\nfound 1 results\n------------------------\n12\n------------------------\n"},
		{name: "count mismatch", input: "~ walker scan results ~\nfound 2 results\n------------------------\n0x1\n------------------------\n"},
		{name: "truncated", input: "~ walker scan results ~\nfound 1 results\n------------------------\n0x1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
