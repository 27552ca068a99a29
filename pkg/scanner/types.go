package scanner

import "github.com/revoverflow/walker/pkg/types"

// ContentItem is one buffer submitted to Core.ScanBatch.
type ContentItem struct {
	Source  string `json:"source"`  // e.g. "upload:1", "pid:4242"
	Content []byte `json:"content"` // base64 in JSON
}

// ScanResult holds the matches found in a single buffer.
type ScanResult struct {
	Source   string         `json:"source"`
	BufferID types.BufferID `json:"buffer_id"`
	Results  []types.Result `json:"results"`
}

// BatchScanResult holds the results of a batch.
type BatchScanResult struct {
	Results []ScanResult `json:"results"`
	Total   int          `json:"total"`
}

// DebugLogger provides platform-specific logging
type DebugLogger interface {
	Log(format string, args ...interface{})
}

// NoopLogger is a no-op logger
type NoopLogger struct{}

func (NoopLogger) Log(format string, args ...interface{}) {}
