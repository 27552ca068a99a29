package types

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// BufferID is the SHA-256 of a scanned buffer's content.
type BufferID [32]byte

// ComputeBufferID hashes content.
func ComputeBufferID(content []byte) BufferID {
	return BufferID(sha256.Sum256(content))
}

// Hex returns the 64-character hex form.
func (id BufferID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id BufferID) String() string {
	return id.Hex()
}

// Short returns the first 12 hex characters, for display.
func (id BufferID) Short() string {
	return id.Hex()[:12]
}

// IsZero reports whether id is unset.
func (id BufferID) IsZero() bool {
	return id == BufferID{}
}

// ParseBufferID parses a 64-character hex string.
func ParseBufferID(hexStr string) (BufferID, error) {
	if len(hexStr) != 64 {
		return BufferID{}, fmt.Errorf("invalid buffer ID length: expected 64, got %d", len(hexStr))
	}
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return BufferID{}, fmt.Errorf("invalid hex string: %w", err)
	}
	var id BufferID
	copy(id[:], decoded)
	return id, nil
}

func (id BufferID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

func (id *BufferID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	parsed, err := ParseBufferID(hexStr)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer.
func (id BufferID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner.
func (id *BufferID) Scan(value interface{}) error {
	var hexStr string
	switch v := value.(type) {
	case string:
		hexStr = v
	case []byte:
		hexStr = string(v)
	case nil:
		return fmt.Errorf("cannot scan nil into BufferID")
	default:
		return fmt.Errorf("cannot scan type %T into BufferID", value)
	}
	parsed, err := ParseBufferID(hexStr)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
