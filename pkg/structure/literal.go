package structure

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/revoverflow/walker/pkg/pattern"
	"github.com/revoverflow/walker/pkg/types"
)

// convertLiteral turns a decoded descriptor value into the typed literal for
// primitive p. size is the field width for dynamic primitives.
func convertLiteral(p types.Primitive, size int, raw any) (types.Literal, error) {
	switch p {
	case types.PrimitiveUint8, types.PrimitiveUint16, types.PrimitiveUint32, types.PrimitiveUint64:
		u, err := parseUnsigned(raw, bitSize(p))
		if err != nil {
			return nil, err
		}
		switch p {
		case types.PrimitiveUint8:
			return types.NumberOf(uint8(u)), nil
		case types.PrimitiveUint16:
			return types.NumberOf(uint16(u)), nil
		case types.PrimitiveUint32:
			return types.NumberOf(uint32(u)), nil
		default:
			return types.NumberOf(u), nil
		}

	case types.PrimitiveInt8, types.PrimitiveInt16, types.PrimitiveInt32, types.PrimitiveInt64:
		i, err := parseSigned(raw, bitSize(p))
		if err != nil {
			return nil, err
		}
		switch p {
		case types.PrimitiveInt8:
			return types.NumberOf(int8(i)), nil
		case types.PrimitiveInt16:
			return types.NumberOf(int16(i)), nil
		case types.PrimitiveInt32:
			return types.NumberOf(int32(i)), nil
		default:
			return types.NumberOf(i), nil
		}

	case types.PrimitiveFloat32:
		f, err := parseFloat(raw)
		if err != nil {
			return nil, err
		}
		if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
			return nil, fmt.Errorf("value %v overflows float32", f)
		}
		return types.NumberOf(float32(f)), nil

	case types.PrimitiveFloat64:
		f, err := parseFloat(raw)
		if err != nil {
			return nil, err
		}
		return types.NumberOf(f), nil

	case types.PrimitivePointer:
		u, err := parseUnsigned(raw, 64)
		if err != nil {
			return nil, err
		}
		return types.Address(u), nil

	case types.PrimitiveBytes:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("bytes value must be a pattern string, got %T", raw)
		}
		compiled, err := pattern.Compile(s)
		if err != nil {
			return nil, err
		}
		return types.Pattern{BytePattern: compiled}, nil

	case types.PrimitiveString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("string value must be text, got %T", raw)
		}
		return types.PaddedText(s, size)
	}

	return nil, fmt.Errorf("primitive %s has no literal form", p)
}

func bitSize(p types.Primitive) int {
	return p.Width() * 8
}

// integerText renders a decoded number or string as integer source text.
func integerText(raw any) (string, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("value %v is not an integer", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case string:
		return strings.TrimSpace(v), nil
	default:
		return "", fmt.Errorf("expected an integer, got %T", raw)
	}
}

// splitBase strips an optional sign and 0x prefix.
func splitBase(s string) (neg bool, digits string, base int) {
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return neg, s[2:], 16
	}
	return neg, s, 10
}

func parseUnsigned(raw any, bits int) (uint64, error) {
	text, err := integerText(raw)
	if err != nil {
		return 0, err
	}
	neg, digits, base := splitBase(text)
	if neg {
		return 0, fmt.Errorf("value %s is negative", text)
	}
	u, err := strconv.ParseUint(digits, base, bits)
	if err != nil {
		return 0, fmt.Errorf("value %s does not fit uint%d", text, bits)
	}
	return u, nil
}

func parseSigned(raw any, bits int) (int64, error) {
	text, err := integerText(raw)
	if err != nil {
		return 0, err
	}
	neg, digits, base := splitBase(text)
	if neg {
		digits = "-" + digits
	}
	i, err := strconv.ParseInt(digits, base, bits)
	if err != nil {
		return 0, fmt.Errorf("value %s does not fit int%d", text, bits)
	}
	return i, nil
}

func parseFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}
