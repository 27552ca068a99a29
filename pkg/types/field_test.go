package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCriterion(t *testing.T) {
	tests := []struct {
		name      string
		kind      CriteriaKind
		primitive Primitive
		value     Literal
		expectErr bool
	}{
		{name: "equal uint32", kind: CriteriaEqual, primitive: PrimitiveUint32, value: NumberOf[uint32](7)},
		{name: "any without value", kind: CriteriaAny, primitive: PrimitiveBytes},
		{name: "pointer equal", kind: CriteriaEqual, primitive: PrimitivePointer, value: Address(0x1000)},
		{name: "string equal", kind: CriteriaEqual, primitive: PrimitiveString, value: Text("abc")},
		{name: "missing value", kind: CriteriaGreaterThan, primitive: PrimitiveInt8, expectErr: true},
		{name: "unexpected value", kind: CriteriaPointerNull, primitive: PrimitivePointer, value: Address(0), expectErr: true},
		{name: "wrong literal kind", kind: CriteriaEqual, primitive: PrimitiveUint32, value: NumberOf[int32](7), expectErr: true},
		{name: "inapplicable", kind: CriteriaGreaterThan, primitive: PrimitivePointer, value: Address(1), expectErr: true},
		{name: "unknown kind", kind: CriteriaNone, primitive: PrimitiveUint8, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCriterion(tt.kind, tt.primitive, tt.value)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, c.Kind)
		})
	}
}

func TestNewField(t *testing.T) {
	f, err := NewField(PrimitiveUint16, 99)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Size, "fixed primitives ignore size")
	assert.Equal(t, 2, f.Width())

	f, err = NewField(PrimitiveBytes, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, f.Width())

	_, err = NewField(PrimitiveString, 0)
	assert.Error(t, err)

	_, err = NewField(PrimitiveNone, 0)
	assert.Error(t, err)

	_, err = NewField(PrimitiveString, 4, Criterion{Kind: CriteriaBytesMatch})
	assert.Error(t, err)
}

func TestField_String(t *testing.T) {
	f := MustField(PrimitiveUint32, 0,
		MustCriterion(CriteriaGreaterOrEqual, PrimitiveUint32, NumberOf[uint32](10)),
		MustCriterion(CriteriaLessOrEqual, PrimitiveUint32, NumberOf[uint32](20)),
	)
	assert.Equal(t, "uint32 greater_or_equal(10) && less_or_equal(20)", f.String())

	b := MustField(PrimitiveString, 4, MustCriterion(CriteriaAny, PrimitiveString, nil))
	assert.Equal(t, "string[4] any", b.String())
}

func TestPaddedText(t *testing.T) {
	txt, err := PaddedText("ab", 4)
	require.NoError(t, err)
	assert.Equal(t, Text{'a', 'b', 0, 0}, txt)
	assert.Equal(t, "ab", txt.String())

	_, err = PaddedText("abcde", 4)
	assert.Error(t, err)
}

func TestErrors_Is(t *testing.T) {
	cfg := &ConfigError{Structure: "hdr", Field: 2, Criterion: 0, Reason: "unknown primitive"}
	assert.True(t, errors.Is(cfg, ErrConfig))
	assert.Equal(t, "config structure hdr field 2 criterion 0: unknown primitive", cfg.Error())

	wrapped := NewConfigError("hdr", "bad descriptor", errors.New("eof"))
	assert.Equal(t, "config structure hdr: bad descriptor: eof", wrapped.Error())

	in := &InputError{Source: "/missing", Err: errors.New("not found")}
	assert.True(t, errors.Is(in, ErrInput))
	assert.False(t, errors.Is(in, ErrConfig))

	pm := &PatternLengthMismatchError{Pattern: "41 42", Tokens: 2, Span: 3}
	assert.True(t, errors.Is(pm, ErrPatternLength))
	assert.Contains(t, pm.Error(), "2 tokens")
}
