package types

// CriteriaKind is a named predicate category applied to a field value.
type CriteriaKind uint8

const (
	CriteriaNone CriteriaKind = iota
	CriteriaAny
	CriteriaEqual
	CriteriaNotEqual
	CriteriaGreaterThan
	CriteriaLessThan
	CriteriaGreaterOrEqual
	CriteriaLessOrEqual
	CriteriaPointerNull
	CriteriaPointerNotNull
	CriteriaBytesMatch
	CriteriaBytesNotMatch
)

// criteriaInfo is one row of the criteria registry.
type criteriaInfo struct {
	name       string
	keywords   []string
	needsValue bool
	accepts    func(Primitive) bool
}

func acceptsAll(p Primitive) bool { return p.Valid() }

func acceptsNumeric(p Primitive) bool { return p.IsNumeric() }

func acceptsPointer(p Primitive) bool { return p == PrimitivePointer }

func acceptsBytes(p Primitive) bool { return p == PrimitiveBytes }

func acceptsEqual(p Primitive) bool {
	return p.IsNumeric() || p == PrimitivePointer || p == PrimitiveString
}

func acceptsNotEqual(p Primitive) bool {
	return p.IsNumeric() || p == PrimitiveString
}

// criteriaTable is indexed by CriteriaKind and never mutated.
var criteriaTable = [...]criteriaInfo{
	CriteriaNone: {name: "none", accepts: func(Primitive) bool { return false }},
	CriteriaAny: {
		name:     "any",
		keywords: []string{"any"},
		accepts:  acceptsAll,
	},
	CriteriaEqual: {
		name:       "equal",
		keywords:   []string{"equal", "equals", "eq", "=", "==", "==="},
		needsValue: true,
		accepts:    acceptsEqual,
	},
	CriteriaNotEqual: {
		name:       "not_equal",
		keywords:   []string{"not_equal", "not_equals", "neq", "!=", "!=="},
		needsValue: true,
		accepts:    acceptsNotEqual,
	},
	CriteriaGreaterThan: {
		name:       "greater_than",
		keywords:   []string{"greater_than", "gt", ">"},
		needsValue: true,
		accepts:    acceptsNumeric,
	},
	CriteriaLessThan: {
		name:       "less_than",
		keywords:   []string{"less_than", "lt", "<"},
		needsValue: true,
		accepts:    acceptsNumeric,
	},
	CriteriaGreaterOrEqual: {
		name:       "greater_or_equal",
		keywords:   []string{"greater_or_equal", "greater_than_or_equal", "gte", ">="},
		needsValue: true,
		accepts:    acceptsNumeric,
	},
	CriteriaLessOrEqual: {
		name:       "less_or_equal",
		keywords:   []string{"less_or_equal", "less_than_or_equal", "lte", "<="},
		needsValue: true,
		accepts:    acceptsNumeric,
	},
	CriteriaPointerNull: {
		name:     "pointer_null",
		keywords: []string{"pointer_null", "ptr_null", "nullptr"},
		accepts:  acceptsPointer,
	},
	CriteriaPointerNotNull: {
		name:     "pointer_not_null",
		keywords: []string{"pointer_not_null", "ptr_not_null", "notnullptr", "!nullptr", "!= nullptr"},
		accepts:  acceptsPointer,
	},
	CriteriaBytesMatch: {
		name:       "bytes_match",
		keywords:   []string{"bytes_match", "match", "pattern", "?"},
		needsValue: true,
		accepts:    acceptsBytes,
	},
	CriteriaBytesNotMatch: {
		name:       "bytes_not_match",
		keywords:   []string{"bytes_not_match", "not_match", "!pattern", "!?"},
		needsValue: true,
		accepts:    acceptsBytes,
	},
}

// Valid reports whether k is a known criteria kind other than CriteriaNone.
func (k CriteriaKind) Valid() bool {
	return k > CriteriaNone && int(k) < len(criteriaTable)
}

// String returns the canonical keyword.
func (k CriteriaKind) String() string {
	if int(k) >= len(criteriaTable) {
		return "unknown"
	}
	return criteriaTable[k].name
}

// NeedsValue reports whether the criteria requires a literal value.
func (k CriteriaKind) NeedsValue() bool {
	return k.Valid() && criteriaTable[k].needsValue
}

// Accepts reports whether the criteria may be attached to a field of kind p.
func (k CriteriaKind) Accepts(p Primitive) bool {
	return k.Valid() && criteriaTable[k].accepts(p)
}

// Keywords returns every keyword that resolves to k.
func (k CriteriaKind) Keywords() []string {
	if !k.Valid() {
		return nil
	}
	return append([]string(nil), criteriaTable[k].keywords...)
}

// CriteriaByName resolves a criteria keyword, filtered by whether a literal
// value accompanies it. Returns CriteriaNone when the keyword is unknown for
// that value-presence combination.
func CriteriaByName(name string, valueProvided bool) CriteriaKind {
	for i := range criteriaTable {
		k := CriteriaKind(i)
		if !k.Valid() || criteriaTable[i].needsValue != valueProvided {
			continue
		}
		for _, keyword := range criteriaTable[i].keywords {
			if keyword == name {
				return k
			}
		}
	}
	return CriteriaNone
}

// CriteriaKinds returns every valid criteria kind in registry order.
func CriteriaKinds() []CriteriaKind {
	out := make([]CriteriaKind, 0, len(criteriaTable)-1)
	for i := range criteriaTable {
		if k := CriteriaKind(i); k.Valid() {
			out = append(out, k)
		}
	}
	return out
}
