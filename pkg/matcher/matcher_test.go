package matcher

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/revoverflow/walker/pkg/pattern"
	"github.com/revoverflow/walker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func TestMatchField_Uint32Range(t *testing.T) {
	m := New(Config{})
	field := types.MustField(types.PrimitiveUint32, 0,
		types.MustCriterion(types.CriteriaGreaterOrEqual, types.PrimitiveUint32, types.NumberOf[uint32](10)),
		types.MustCriterion(types.CriteriaLessOrEqual, types.PrimitiveUint32, types.NumberOf[uint32](20)),
	)

	tests := []struct {
		value uint32
		want  bool
	}{
		{value: 15, want: true},
		{value: 10, want: true},
		{value: 20, want: true},
		{value: 9, want: false},
		{value: 21, want: false},
	}

	for _, tt := range tests {
		ok, err := m.MatchField(le32(tt.value), 0, &field)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "value %d", tt.value)
	}
}

func TestMatchField_NumericComparisons(t *testing.T) {
	m := New(Config{})
	buf := le32(0xFFFFFFFB)

	tests := []struct {
		name string
		kind types.CriteriaKind
		lit  int32
		want bool
	}{
		{name: "equal", kind: types.CriteriaEqual, lit: -5, want: true},
		{name: "equal miss", kind: types.CriteriaEqual, lit: 5, want: false},
		{name: "not equal", kind: types.CriteriaNotEqual, lit: 5, want: true},
		{name: "not equal miss", kind: types.CriteriaNotEqual, lit: -5, want: false},
		{name: "greater than", kind: types.CriteriaGreaterThan, lit: -6, want: true},
		{name: "greater than miss", kind: types.CriteriaGreaterThan, lit: -5, want: false},
		{name: "less than", kind: types.CriteriaLessThan, lit: 0, want: true},
		{name: "less than miss", kind: types.CriteriaLessThan, lit: -5, want: false},
		{name: "greater or equal", kind: types.CriteriaGreaterOrEqual, lit: -5, want: true},
		{name: "less or equal", kind: types.CriteriaLessOrEqual, lit: -6, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := types.MustField(types.PrimitiveInt32, 0,
				types.MustCriterion(tt.kind, types.PrimitiveInt32, types.NumberOf(tt.lit)))
			ok, err := m.MatchField(buf, 0, &field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestMatchField_AnyAlwaysMatches(t *testing.T) {
	m := New(Config{})
	for _, p := range []types.Primitive{types.PrimitiveUint8, types.PrimitiveInt64, types.PrimitiveFloat64, types.PrimitivePointer} {
		field := types.MustField(p, 0, types.MustCriterion(types.CriteriaAny, p, nil))
		ok, err := m.MatchField(le64(0xdeadbeef), 0, &field)
		require.NoError(t, err)
		assert.True(t, ok, p.String())
	}
}

func TestMatchField_Floats(t *testing.T) {
	m := New(Config{})
	buf := le64(math.Float64bits(3.5))

	field := types.MustField(types.PrimitiveFloat64, 0,
		types.MustCriterion(types.CriteriaGreaterThan, types.PrimitiveFloat64, types.NumberOf(3.0)),
		types.MustCriterion(types.CriteriaLessThan, types.PrimitiveFloat64, types.NumberOf(4.0)),
	)
	ok, err := m.MatchField(buf, 0, &field)
	require.NoError(t, err)
	assert.True(t, ok)

	f32 := types.MustField(types.PrimitiveFloat32, 0,
		types.MustCriterion(types.CriteriaEqual, types.PrimitiveFloat32, types.NumberOf[float32](1.25)))
	ok, err = m.MatchField(le32(math.Float32bits(1.25)), 0, &f32)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchField_Pointer(t *testing.T) {
	m := New(Config{})

	null := types.MustField(types.PrimitivePointer, 0, types.MustCriterion(types.CriteriaPointerNull, types.PrimitivePointer, nil))
	notNull := types.MustField(types.PrimitivePointer, 0, types.MustCriterion(types.CriteriaPointerNotNull, types.PrimitivePointer, nil))
	equal := types.MustField(types.PrimitivePointer, 0, types.MustCriterion(types.CriteriaEqual, types.PrimitivePointer, types.Address(0x7ff6_0000_1000)))

	ok, _ := m.MatchField(le64(0), 0, &null)
	assert.True(t, ok)
	ok, _ = m.MatchField(le64(0), 0, &notNull)
	assert.False(t, ok)
	ok, _ = m.MatchField(le64(0x1000), 0, &notNull)
	assert.True(t, ok)
	ok, _ = m.MatchField(le64(0x7ff6_0000_1000), 0, &equal)
	assert.True(t, ok)
	ok, _ = m.MatchField(le64(0x7ff6_0000_1001), 0, &equal)
	assert.False(t, ok)
}

func TestMatchField_InapplicableCriteriaFail(t *testing.T) {
	m := New(Config{})

	// Bypass constructor validation to exercise the matcher's own guard.
	field := types.Field{
		Primitive: types.PrimitivePointer,
		Criteria:  []types.Criterion{{Kind: types.CriteriaGreaterThan, Value: types.Address(1)}},
	}
	ok, err := m.MatchField(le64(5), 0, &field)
	require.NoError(t, err)
	assert.False(t, ok)

	numeric := types.Field{
		Primitive: types.PrimitiveUint8,
		Criteria:  []types.Criterion{{Kind: types.CriteriaPointerNull}},
	}
	ok, err = m.MatchField([]byte{0}, 0, &numeric)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchField_Bytes(t *testing.T) {
	m := New(Config{})
	p := types.Pattern{BytePattern: pattern.MustCompile("41 ?? 43")}

	match := types.MustField(types.PrimitiveBytes, 3, types.MustCriterion(types.CriteriaBytesMatch, types.PrimitiveBytes, p))
	notMatch := types.MustField(types.PrimitiveBytes, 3, types.MustCriterion(types.CriteriaBytesNotMatch, types.PrimitiveBytes, p))

	ok, err := m.MatchField([]byte("AZC"), 0, &match)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.MatchField([]byte("AZC"), 0, &notMatch)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.MatchField([]byte("BZC"), 0, &notMatch)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchField_BytesLengthMismatch(t *testing.T) {
	m := New(Config{})
	p := types.Pattern{BytePattern: pattern.MustCompile("41 42")}

	for _, kind := range []types.CriteriaKind{types.CriteriaBytesMatch, types.CriteriaBytesNotMatch} {
		field := types.MustField(types.PrimitiveBytes, 3, types.MustCriterion(kind, types.PrimitiveBytes, p))
		ok, err := m.MatchField([]byte("ABC"), 0, &field)
		assert.False(t, ok, kind.String())
		assert.True(t, errors.Is(err, types.ErrPatternLength), kind.String())
	}
}

func TestMatchField_String(t *testing.T) {
	m := New(Config{})
	lit, err := types.PaddedText("abc", 4)
	require.NoError(t, err)

	equal := types.MustField(types.PrimitiveString, 4, types.MustCriterion(types.CriteriaEqual, types.PrimitiveString, lit))
	notEqual := types.MustField(types.PrimitiveString, 4, types.MustCriterion(types.CriteriaNotEqual, types.PrimitiveString, lit))

	ok, _ := m.MatchField([]byte("abc\x00"), 0, &equal)
	assert.True(t, ok)
	ok, _ = m.MatchField([]byte("abcd"), 0, &equal)
	assert.False(t, ok, "fixed width comparison, not null terminated")
	ok, _ = m.MatchField([]byte("abcd"), 0, &notEqual)
	assert.True(t, ok)
	ok, _ = m.MatchField([]byte("abc\x00"), 0, &notEqual)
	assert.False(t, ok)
}

func TestMatchField_OutOfBounds(t *testing.T) {
	m := New(Config{})
	field := types.MustField(types.PrimitiveUint32, 0, types.MustCriterion(types.CriteriaAny, types.PrimitiveUint32, nil))

	ok, err := m.MatchField([]byte{1, 2, 3}, 0, &field)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.MatchField(le32(1), 1, &field)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.MatchField(le32(1), -1, &field)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchField_ByteOrder(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x01, 0x00}
	field := types.MustField(types.PrimitiveUint32, 0,
		types.MustCriterion(types.CriteriaEqual, types.PrimitiveUint32, types.NumberOf[uint32](0x100)))

	little := New(Config{ByteOrder: binary.LittleEndian})
	big := New(Config{ByteOrder: binary.BigEndian})

	ok, _ := big.MatchField(buf, 0, &field)
	assert.True(t, ok)
	ok, _ = little.MatchField(buf, 0, &field)
	assert.False(t, ok)
}

func TestParseByteOrder(t *testing.T) {
	order, err := ParseByteOrder("")
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian, order)

	order, err = ParseByteOrder("BIG")
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, order)

	_, err = ParseByteOrder("middle")
	assert.Error(t, err)
}

func TestStructureSize(t *testing.T) {
	fields := []types.Field{
		types.MustField(types.PrimitiveUint8, 0),
		types.MustField(types.PrimitiveUint64, 0),
		types.MustField(types.PrimitivePointer, 0),
		types.MustField(types.PrimitiveBytes, 16),
		types.MustField(types.PrimitiveString, 5),
	}
	assert.Equal(t, 1+8+8+16+5, StructureSize(fields))
	assert.Equal(t, 0, StructureSize(nil))
}
