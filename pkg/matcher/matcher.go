// Package matcher evaluates field criteria against raw buffer bytes.
package matcher

import (
	"encoding/binary"
	"math"

	"github.com/revoverflow/walker/pkg/types"
)

// Matcher checks whether a field's criteria hold at a buffer position.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	order binary.ByteOrder
}

// New creates a Matcher from cfg.
func New(cfg Config) *Matcher {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return &Matcher{order: order}
}

// ByteOrder returns the order used to decode numeric and pointer fields.
func (m *Matcher) ByteOrder() binary.ByteOrder {
	return m.order
}

// MatchField evaluates every criterion of f against buf[pos:pos+f.Width()].
// Criteria are ANDed and evaluation stops at the first failure. A span that
// runs past the end of buf never matches. The returned error is only ever a
// *types.PatternLengthMismatchError, and it always comes with false.
func (m *Matcher) MatchField(buf []byte, pos int, f *types.Field) (bool, error) {
	width := f.Width()
	if pos < 0 || width <= 0 || pos+width > len(buf) {
		return false, nil
	}
	span := buf[pos : pos+width : pos+width]

	switch f.Primitive {
	case types.PrimitiveUint8:
		return matchNumeric(span[0], f.Criteria), nil
	case types.PrimitiveUint16:
		return matchNumeric(m.order.Uint16(span), f.Criteria), nil
	case types.PrimitiveUint32:
		return matchNumeric(m.order.Uint32(span), f.Criteria), nil
	case types.PrimitiveUint64:
		return matchNumeric(m.order.Uint64(span), f.Criteria), nil
	case types.PrimitiveInt8:
		return matchNumeric(int8(span[0]), f.Criteria), nil
	case types.PrimitiveInt16:
		return matchNumeric(int16(m.order.Uint16(span)), f.Criteria), nil
	case types.PrimitiveInt32:
		return matchNumeric(int32(m.order.Uint32(span)), f.Criteria), nil
	case types.PrimitiveInt64:
		return matchNumeric(int64(m.order.Uint64(span)), f.Criteria), nil
	case types.PrimitiveFloat32:
		return matchNumeric(math.Float32frombits(m.order.Uint32(span)), f.Criteria), nil
	case types.PrimitiveFloat64:
		return matchNumeric(math.Float64frombits(m.order.Uint64(span)), f.Criteria), nil
	case types.PrimitivePointer:
		return matchPointer(types.Address(m.order.Uint64(span)), f.Criteria), nil
	case types.PrimitiveBytes:
		return matchBytes(span, f.Criteria)
	case types.PrimitiveString:
		return matchString(span, f.Criteria), nil
	}

	return false, nil
}
