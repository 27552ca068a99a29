package types

import (
	"fmt"
	"strings"
)

// Criterion is one predicate attached to a field.
type Criterion struct {
	Kind  CriteriaKind
	Value Literal // nil unless Kind.NeedsValue()
}

// NewCriterion validates kind and value against the field primitive.
// A criterion that needs a value and lacks one, carries one it does not
// need, carries a value of the wrong kind, or is not legal for the
// primitive is rejected here so the matcher never sees it.
func NewCriterion(kind CriteriaKind, primitive Primitive, value Literal) (Criterion, error) {
	if !kind.Valid() {
		return Criterion{}, fmt.Errorf("unknown criteria kind %d", kind)
	}
	if !kind.Accepts(primitive) {
		return Criterion{}, fmt.Errorf("criteria %s is not applicable to %s fields", kind, primitive)
	}
	if kind.NeedsValue() {
		if value == nil {
			return Criterion{}, fmt.Errorf("criteria %s requires a value", kind)
		}
		if value.Primitive() != primitive {
			return Criterion{}, fmt.Errorf("criteria %s value is %s, field is %s", kind, value.Primitive(), primitive)
		}
	} else if value != nil {
		return Criterion{}, fmt.Errorf("criteria %s does not take a value", kind)
	}
	return Criterion{Kind: kind, Value: value}, nil
}

// MustCriterion is NewCriterion that panics on error. Intended for tests and
// builtin tables.
func MustCriterion(kind CriteriaKind, primitive Primitive, value Literal) Criterion {
	c, err := NewCriterion(kind, primitive, value)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Criterion) String() string {
	if c.Value == nil {
		return c.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", c.Kind, c.Value)
}

// Field describes one typed slot of a structure layout.
type Field struct {
	Name      string
	Primitive Primitive
	Criteria  []Criterion // ANDed, evaluated left to right
	Size      int         // only meaningful for dynamic primitives
}

// NewField validates the primitive and size. Dynamic primitives need
// size > 0; fixed primitives ignore size.
func NewField(primitive Primitive, size int, criteria ...Criterion) (Field, error) {
	if !primitive.Valid() {
		return Field{}, fmt.Errorf("unknown primitive %d", primitive)
	}
	if primitive.IsDynamic() {
		if size <= 0 {
			return Field{}, fmt.Errorf("%s field requires size > 0", primitive)
		}
	} else {
		size = 0
	}
	for i, c := range criteria {
		if !c.Kind.Accepts(primitive) {
			return Field{}, fmt.Errorf("criterion %d: %s is not applicable to %s fields", i, c.Kind, primitive)
		}
	}
	return Field{Primitive: primitive, Criteria: criteria, Size: size}, nil
}

// MustField is NewField that panics on error.
func MustField(primitive Primitive, size int, criteria ...Criterion) Field {
	f, err := NewField(primitive, size, criteria...)
	if err != nil {
		panic(err)
	}
	return f
}

// Width returns the effective byte width: the registry width for fixed
// kinds, Size for dynamic kinds.
func (f Field) Width() int {
	if f.Primitive.IsDynamic() {
		return f.Size
	}
	return f.Primitive.Width()
}

func (f Field) String() string {
	parts := make([]string, len(f.Criteria))
	for i, c := range f.Criteria {
		parts[i] = c.String()
	}
	if f.Primitive.IsDynamic() {
		return fmt.Sprintf("%s[%d] %s", f.Primitive, f.Size, strings.Join(parts, " && "))
	}
	return fmt.Sprintf("%s %s", f.Primitive, strings.Join(parts, " && "))
}

// Structure is an ordered field layout, immutable once a scan starts.
type Structure struct {
	ID          string
	Name        string
	Description string
	Fields      []Field
}
