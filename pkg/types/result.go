package types

// Result is one full-structure match inside a buffer.
type Result struct {
	Offset int `json:"offset"`
	Size   int `json:"size"`

	// Data is a view of the matched bytes. It aliases the scanned buffer
	// and is valid only while that buffer is live.
	Data []byte `json:"data,omitempty"`

	StructureID string   `json:"structure_id,omitempty"`
	BufferID    BufferID `json:"buffer_id"`
}

// End returns the offset one past the last matched byte.
func (r Result) End() int {
	return r.Offset + r.Size
}

// Detach returns a copy of r whose Data no longer aliases the buffer.
func (r Result) Detach() Result {
	if r.Data != nil {
		r.Data = append([]byte(nil), r.Data...)
	}
	return r
}

// StoredResult is a persisted result. Its Data is an owned copy.
type StoredResult struct {
	Result
	ScanID string `json:"scan_id,omitempty"`
	Source string `json:"source,omitempty"`
}
