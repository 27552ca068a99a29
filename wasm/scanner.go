//go:build wasm

package main

import (
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/revoverflow/walker/pkg/matcher"
	"github.com/revoverflow/walker/pkg/scanner"
)

var (
	scanners   = make(map[int]*scanner.Core)
	scannersMu sync.RWMutex
	nextID     int
)

// structureInfo is the JS view of a structure.
type structureInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Size        int      `json:"size"`
	Fields      []string `json:"fields"`
}

// newScanner creates a new scanner from a structure descriptor.
// JS: WalkerNewScanner(descriptor) -> {handle} or {error}
// descriptor is "builtin" or a JSON/YAML descriptor document.
func newScanner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "descriptor argument required"}
	}

	descriptor := args[0].String()

	// Create scanner core (uses cached builtin structures)
	core, err := scanner.NewCore(descriptor, scanner.NoopLogger{})
	if err != nil {
		return map[string]interface{}{"error": "failed to create scanner: " + err.Error()}
	}

	// Register scanner
	scannersMu.Lock()
	id := nextID
	nextID++
	scanners[id] = core
	scannersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

// scan scans a single buffer.
// JS: WalkerScan(handle, content, source) -> JSON results or error
// content is a Uint8Array or a string.
func scan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and content arguments required"}
	}

	handle := args[0].Int()
	content := contentBytes(args[1])
	source := ""
	if len(args) > 2 {
		source = args[2].String()
	}

	scannersMu.RLock()
	core, ok := scanners[handle]
	scannersMu.RUnlock()

	if !ok {
		return map[string]interface{}{"error": "invalid scanner handle"}
	}

	result, err := core.Scan(content, source)
	if err != nil {
		return map[string]interface{}{"error": "scan failed: " + err.Error()}
	}

	// Return results as JSON
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal results: " + err.Error()}
	}

	return string(jsonBytes)
}

// scanBatch scans multiple buffers.
// JS: WalkerScanBatch(handle, itemsJSON) -> JSON results or error
// Each item is {"source": ..., "content": <base64>}.
func scanBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and itemsJSON arguments required"}
	}

	handle := args[0].Int()
	itemsJSON := args[1].String()

	scannersMu.RLock()
	core, ok := scanners[handle]
	scannersMu.RUnlock()

	if !ok {
		return map[string]interface{}{"error": "invalid scanner handle"}
	}

	// Parse items
	var items []scanner.ContentItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return map[string]interface{}{"error": "failed to parse items JSON: " + err.Error()}
	}

	batchResult, err := core.ScanBatch(items)
	if err != nil {
		return map[string]interface{}{"error": "batch scan failed: " + err.Error()}
	}

	jsonBytes, err := json.Marshal(batchResult)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal results: " + err.Error()}
	}

	return string(jsonBytes)
}

// closeScanner closes a scanner and releases resources.
// JS: WalkerCloseScanner(handle)
func closeScanner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "handle argument required"}
	}

	handle := args[0].Int()

	scannersMu.Lock()
	core, ok := scanners[handle]
	if ok {
		delete(scanners, handle)
	}
	scannersMu.Unlock()

	if !ok {
		return map[string]interface{}{"error": "invalid scanner handle"}
	}

	core.Close()

	return nil
}

// getBuiltinStructures returns the builtin structures as JSON.
// JS: WalkerGetBuiltinStructures() -> JSON structure array
func getBuiltinStructures(this js.Value, args []js.Value) interface{} {
	structures, err := scanner.GetBuiltinStructures()
	if err != nil {
		return map[string]interface{}{"error": "failed to load builtin structures: " + err.Error()}
	}

	infos := make([]structureInfo, len(structures))
	for i, s := range structures {
		fields := make([]string, len(s.Fields))
		for j, f := range s.Fields {
			fields[j] = f.String()
		}
		infos[i] = structureInfo{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Size:        matcher.StructureSize(s.Fields),
			Fields:      fields,
		}
	}

	jsonBytes, err := json.Marshal(infos)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal structures: " + err.Error()}
	}

	return string(jsonBytes)
}

// contentBytes copies a Uint8Array, or takes the UTF-8 bytes of a string.
func contentBytes(v js.Value) []byte {
	if v.Type() == js.TypeObject && v.Get("byteLength").Type() == js.TypeNumber {
		buf := make([]byte, v.Get("byteLength").Int())
		js.CopyBytesToGo(buf, v)
		return buf
	}
	return []byte(v.String())
}
