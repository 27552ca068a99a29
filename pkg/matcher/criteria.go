package matcher

import (
	"bytes"
	"errors"

	"github.com/revoverflow/walker/pkg/types"
)

// matchNumeric ANDs criteria over a decoded numeric value. Kinds that do not
// apply to numbers fail.
func matchNumeric[T types.Numeric](v T, criteria []types.Criterion) bool {
	for _, c := range criteria {
		if !compareNumeric(v, c) {
			return false
		}
	}
	return true
}

func compareNumeric[T types.Numeric](v T, c types.Criterion) bool {
	if c.Kind == types.CriteriaAny {
		return true
	}

	lit, ok := c.Value.(types.Number[T])
	if !ok {
		return false
	}

	switch c.Kind {
	case types.CriteriaEqual:
		return v == lit.V
	case types.CriteriaNotEqual:
		return v != lit.V
	case types.CriteriaGreaterThan:
		return v > lit.V
	case types.CriteriaLessThan:
		return v < lit.V
	case types.CriteriaGreaterOrEqual:
		return v >= lit.V
	case types.CriteriaLessOrEqual:
		return v <= lit.V
	default:
		return false
	}
}

func matchPointer(addr types.Address, criteria []types.Criterion) bool {
	for _, c := range criteria {
		if !comparePointer(addr, c) {
			return false
		}
	}
	return true
}

func comparePointer(addr types.Address, c types.Criterion) bool {
	switch c.Kind {
	case types.CriteriaAny:
		return true
	case types.CriteriaPointerNull:
		return addr == 0
	case types.CriteriaPointerNotNull:
		return addr != 0
	case types.CriteriaEqual:
		lit, ok := c.Value.(types.Address)
		return ok && addr == lit
	default:
		return false
	}
}

// matchBytes evaluates bytes criteria. A pattern length mismatch is a
// non-match for both bytes_match and bytes_not_match.
func matchBytes(span []byte, criteria []types.Criterion) (bool, error) {
	for ci, c := range criteria {
		switch c.Kind {
		case types.CriteriaAny:
			continue
		case types.CriteriaBytesMatch, types.CriteriaBytesNotMatch:
			lit, ok := c.Value.(types.Pattern)
			if !ok || lit.BytePattern == nil {
				return false, nil
			}
			matched, err := lit.Match(span)
			if err != nil {
				var pm *types.PatternLengthMismatchError
				if errors.As(err, &pm) {
					pm.Criterion = ci
				}
				return false, err
			}
			if c.Kind == types.CriteriaBytesNotMatch {
				matched = !matched
			}
			if !matched {
				return false, nil
			}
		default:
			return false, nil
		}
	}
	return true, nil
}

// matchString compares the full declared width byte for byte.
func matchString(span []byte, criteria []types.Criterion) bool {
	for _, c := range criteria {
		switch c.Kind {
		case types.CriteriaAny:
			continue
		case types.CriteriaEqual, types.CriteriaNotEqual:
			lit, ok := c.Value.(types.Text)
			if !ok {
				return false
			}
			equal := bytes.Equal(span, lit)
			if equal != (c.Kind == types.CriteriaEqual) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
