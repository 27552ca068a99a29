package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const bangDescriptor = `[
	{"type": "bytes", "size": 8, "criterias": [{"type": "match", "value": "21 21 21 21 21 21 21 21"}]}
]`

// executeCommand runs a fresh command tree and returns stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// bangBuffer matches the bang descriptor at offsets 0x2 and 0x3.
func bangBuffer() []byte {
	return []byte("AB" + strings.Repeat("!", 9) + "C")
}
