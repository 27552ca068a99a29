package types

// Primitive is the byte-level type of a structure field.
type Primitive uint8

const (
	PrimitiveNone Primitive = iota
	PrimitiveUint8
	PrimitiveUint16
	PrimitiveUint32
	PrimitiveUint64
	PrimitiveInt8
	PrimitiveInt16
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveFloat32
	PrimitiveFloat64
	PrimitivePointer
	PrimitiveBytes
	PrimitiveString
)

// DynamicWidth is returned by Primitive.Width for kinds whose width is
// supplied per field (bytes, string).
const DynamicWidth = -1

// PointerSize is the width of a pointer field in bytes.
const PointerSize = 8

// primitiveInfo is one row of the primitive registry.
type primitiveInfo struct {
	name    string
	aliases []string
	width   int
	dynamic bool
	numeric bool
}

// primitiveTable is indexed by Primitive and never mutated.
var primitiveTable = [...]primitiveInfo{
	PrimitiveNone:    {name: "none"},
	PrimitiveUint8:   {name: "uint8", width: 1, numeric: true},
	PrimitiveUint16:  {name: "uint16", width: 2, numeric: true},
	PrimitiveUint32:  {name: "uint32", width: 4, numeric: true},
	PrimitiveUint64:  {name: "uint64", width: 8, numeric: true},
	PrimitiveInt8:    {name: "int8", width: 1, numeric: true},
	PrimitiveInt16:   {name: "int16", width: 2, numeric: true},
	PrimitiveInt32:   {name: "int32", width: 4, numeric: true},
	PrimitiveInt64:   {name: "int64", width: 8, numeric: true},
	PrimitiveFloat32: {name: "float32", aliases: []string{"float"}, width: 4, numeric: true},
	PrimitiveFloat64: {name: "float64", aliases: []string{"double"}, width: 8, numeric: true},
	PrimitivePointer: {name: "pointer", width: PointerSize},
	PrimitiveBytes:   {name: "bytes", dynamic: true},
	PrimitiveString:  {name: "string", dynamic: true},
}

// Valid reports whether p is a known, resolvable primitive.
func (p Primitive) Valid() bool {
	return p > PrimitiveNone && int(p) < len(primitiveTable)
}

// String returns the registry name.
func (p Primitive) String() string {
	if int(p) >= len(primitiveTable) {
		return "unknown"
	}
	return primitiveTable[p].name
}

// Width returns the fixed byte width, or DynamicWidth for bytes and string.
func (p Primitive) Width() int {
	if !p.Valid() {
		return 0
	}
	if primitiveTable[p].dynamic {
		return DynamicWidth
	}
	return primitiveTable[p].width
}

// IsDynamic reports whether the width must be supplied by the field.
func (p Primitive) IsDynamic() bool {
	return p.Valid() && primitiveTable[p].dynamic
}

// IsNumeric reports whether p is one of the integer or float kinds.
func (p Primitive) IsNumeric() bool {
	return p.Valid() && primitiveTable[p].numeric
}

// IsFloat reports whether p is float32 or float64.
func (p Primitive) IsFloat() bool {
	return p == PrimitiveFloat32 || p == PrimitiveFloat64
}

// IsSigned reports whether p is a signed integer kind.
func (p Primitive) IsSigned() bool {
	return p >= PrimitiveInt8 && p <= PrimitiveInt64
}

// PrimitiveByName resolves a textual primitive name. sizeProvided declares
// whether the caller has an explicit width for the field; it must agree with
// the kind's dynamic flag. Returns PrimitiveNone when nothing matches.
func PrimitiveByName(name string, sizeProvided bool) Primitive {
	for i := range primitiveTable {
		p := Primitive(i)
		if !p.Valid() {
			continue
		}
		info := primitiveTable[i]
		if info.dynamic != sizeProvided {
			continue
		}
		if info.name == name {
			return p
		}
		for _, alias := range info.aliases {
			if alias == name {
				return p
			}
		}
	}
	return PrimitiveNone
}

// Primitives returns every resolvable primitive in registry order.
func Primitives() []Primitive {
	out := make([]Primitive, 0, len(primitiveTable)-1)
	for i := range primitiveTable {
		if p := Primitive(i); p.Valid() {
			out = append(out, p)
		}
	}
	return out
}
