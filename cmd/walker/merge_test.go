package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revoverflow/walker/pkg/report"
)

func TestMergeCmd_RequiresMinimumArgs(t *testing.T) {
	_, _, err := executeCommand(t, "", "merge", "only-one.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestMergeCmd_MergesTwoDatabases(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	desc := writeFile(t, dir, "bang.json", []byte(bangDescriptor))
	first := scanInto(t, dir, "first.db", writeFile(t, dir, "a.bin", bangBuffer()), desc)
	second := scanInto(t, dir, "second.db", writeFile(t, dir, "b.bin", []byte("!!!!!!!!")), desc)
	merged := filepath.Join(dir, "merged.db")

	// Act
	stdout, _, err := executeCommand(t, "", "merge", first, second, "-o", merged)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sources processed: 2")
	assert.Contains(t, stdout, "Results merged: 3")

	out, _, err := executeCommand(t, "", "report", "--datastore", merged)
	require.NoError(t, err)
	blocks, err := report.ParseText(strings.NewReader(out))
	require.NoError(t, err)
	total := 0
	for _, b := range blocks {
		total += len(b.Offsets)
	}
	assert.Equal(t, 3, total)
}

func TestMergeCmd_FailsWithInvalidSource(t *testing.T) {
	dir := t.TempDir()
	_, _, err := executeCommand(t, "", "merge",
		filepath.Join(dir, "missing1.db"), filepath.Join(dir, "missing2.db"),
		"-o", filepath.Join(dir, "merged.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge failed")
}
