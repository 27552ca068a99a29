package types

import (
	"bytes"
	"fmt"
)

// Literal is the typed comparison value carried by a Criterion. The set of
// implementations is closed: Number[T], Address, Pattern and Text.
type Literal interface {
	// Primitive returns the field kind this literal is valid for.
	Primitive() Primitive
	fmt.Stringer
	isLiteral()
}

// Numeric is the set of Go types backing the numeric primitives.
type Numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Number is a literal for a numeric primitive.
type Number[T Numeric] struct {
	V T
}

// NumberOf wraps v as a Number literal.
func NumberOf[T Numeric](v T) Number[T] {
	return Number[T]{V: v}
}

// Primitive returns the numeric kind matching T.
func (n Number[T]) Primitive() Primitive {
	return primitiveOf[T]()
}

func (n Number[T]) String() string {
	return fmt.Sprintf("%v", n.V)
}

func (Number[T]) isLiteral() {}

// primitiveOf maps a numeric Go type to its primitive kind.
func primitiveOf[T Numeric]() Primitive {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return PrimitiveUint8
	case uint16:
		return PrimitiveUint16
	case uint32:
		return PrimitiveUint32
	case uint64:
		return PrimitiveUint64
	case int8:
		return PrimitiveInt8
	case int16:
		return PrimitiveInt16
	case int32:
		return PrimitiveInt32
	case int64:
		return PrimitiveInt64
	case float32:
		return PrimitiveFloat32
	case float64:
		return PrimitiveFloat64
	}
	return PrimitiveNone
}

// Address is a raw pointer-sized value for pointer fields.
type Address uint64

func (Address) Primitive() Primitive { return PrimitivePointer }

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

func (Address) isLiteral() {}

// BytePattern is a compiled wildcard byte pattern.
type BytePattern interface {
	// Len returns the number of tokens in the pattern.
	Len() int
	// Match compares span against the pattern. A token count that differs
	// from len(span) is reported as *PatternLengthMismatchError.
	Match(span []byte) (bool, error)
	String() string
}

// Pattern is a literal for bytes fields.
type Pattern struct {
	BytePattern
}

func (Pattern) Primitive() Primitive { return PrimitiveBytes }

func (p Pattern) String() string {
	if p.BytePattern == nil {
		return ""
	}
	return p.BytePattern.String()
}

func (Pattern) isLiteral() {}

// Text is a fixed-width literal for string fields. It is zero padded to the
// field size when the criterion is built.
type Text []byte

func (Text) Primitive() Primitive { return PrimitiveString }

func (t Text) String() string {
	return string(bytes.TrimRight(t, "\x00"))
}

func (Text) isLiteral() {}

// PaddedText returns s as a Text literal zero padded to size bytes.
// It fails when s does not fit.
func PaddedText(s string, size int) (Text, error) {
	if len(s) > size {
		return nil, fmt.Errorf("string literal is %d bytes, field is %d", len(s), size)
	}
	t := make(Text, size)
	copy(t, s)
	return t, nil
}
