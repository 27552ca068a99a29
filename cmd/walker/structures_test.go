package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStructuresList(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "structures", "list")
	require.NoError(t, err)

	assert.Contains(t, stdout, "ID")
	assert.Contains(t, stdout, "elf.elf64_header")
	assert.Contains(t, stdout, "pe.dos_header")
	assert.Contains(t, stdout, "heap.string_header")
}

func TestRunStructuresListJSON(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	desc := writeFile(t, dir, "bang.json", []byte(bangDescriptor))

	// Act
	stdout, _, err := executeCommand(t, "", "structures", "list", "-s", desc, "--format", "json")

	// Assert
	require.NoError(t, err)
	var infos []structureInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "bang", infos[0].ID)
	assert.Equal(t, 8, infos[0].Size)
	assert.Len(t, infos[0].Fields, 1)
}

func TestRunStructuresList_UnknownFormat(t *testing.T) {
	_, _, err := executeCommand(t, "", "structures", "list", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
