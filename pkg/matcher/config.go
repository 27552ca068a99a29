package matcher

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Config for matcher initialization.
type Config struct {
	// ByteOrder decodes numeric and pointer fields. Defaults to little endian.
	ByteOrder binary.ByteOrder
}

// ParseByteOrder maps "little"/"le" and "big"/"be" to a binary.ByteOrder.
// The empty string selects little endian.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "little", "le", "little-endian":
		return binary.LittleEndian, nil
	case "big", "be", "big-endian":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order: %s", name)
	}
}
