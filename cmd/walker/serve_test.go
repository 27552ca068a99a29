package main

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revoverflow/walker/pkg/serve"
)

func TestServeCommand_Exists(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
}

func TestServeCommand_Integration(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	desc := writeFile(t, dir, "bang.json", []byte(bangDescriptor))
	payload, err := json.Marshal(serve.ScanPayload{Source: "inline", Content: bangBuffer()})
	require.NoError(t, err)
	stdin := `{"type":"scan","payload":` + string(payload) + "}\n" + `{"type":"close","payload":{}}` + "\n"

	// Act
	stdout, _, err := executeCommand(t, stdin, "serve", "-s", desc)

	// Assert
	require.NoError(t, err)
	var responses []serve.Response
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		var resp serve.Response
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, 2)
	assert.Equal(t, "ready", responses[0].Type)
	assert.Equal(t, "scan", responses[1].Type)
	assert.True(t, responses[1].Success)
	assert.Contains(t, stdout, `"offset":2`)
	assert.Contains(t, stdout, `"offset":3`)
}
