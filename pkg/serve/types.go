package serve

import (
	"encoding/json"

	"github.com/revoverflow/walker/pkg/scanner"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "scan" | "scan_batch" | "close"
	Payload json.RawMessage `json:"payload"`
}

// ScanPayload is the payload for "scan" requests
type ScanPayload struct {
	Source  string `json:"source"`
	Content []byte `json:"content"` // base64

	// Structure is an optional JSON or YAML descriptor used instead of the
	// structures the server was started with.
	Structure string `json:"structure,omitempty"`
}

// ScanBatchPayload is the payload for "scan_batch" requests
type ScanBatchPayload struct {
	Items     []scanner.ContentItem `json:"items"`
	Structure string                `json:"structure,omitempty"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "scan" | "scan_batch" | "decode" | "unknown"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version    string   `json:"version"`
	Structures []string `json:"structures"`
}
