// Package prefilter rejects buffers that cannot contain a structure because
// one of its mandatory byte anchors is absent.
package prefilter

import (
	"encoding/binary"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/revoverflow/walker/pkg/types"
)

// Prefilter uses Aho-Corasick to find every anchor in one pass over a buffer.
type Prefilter struct {
	mu      sync.Mutex // ahocorasick.Matcher keeps per-match state
	matcher *ahocorasick.Matcher
	anchors [][]byte // anchor at each dictionary index

	structures []*types.Structure
	required   map[*types.Structure][]int // structure -> anchor indexes it needs
}

// New creates a prefilter for structures. order must be the byte order the
// scan decodes with, since integer anchors are encoded with it.
func New(structures []*types.Structure, order binary.ByteOrder) *Prefilter {
	if order == nil {
		order = binary.LittleEndian
	}

	pf := &Prefilter{
		structures: structures,
		required:   make(map[*types.Structure][]int),
	}

	index := make(map[string]int)
	for _, s := range structures {
		for _, anchor := range Anchors(s, order) {
			key := string(anchor)
			i, ok := index[key]
			if !ok {
				i = len(pf.anchors)
				index[key] = i
				pf.anchors = append(pf.anchors, anchor)
			}
			pf.required[s] = append(pf.required[s], i)
		}
	}

	if len(pf.anchors) > 0 {
		pf.matcher = ahocorasick.NewMatcher(pf.anchors)
	}

	return pf
}

// Filter returns the structures whose anchors all occur in content, in their
// original order. Structures without anchors are always returned.
func (pf *Prefilter) Filter(content []byte) []*types.Structure {
	result := make([]*types.Structure, 0, len(pf.structures))

	var found map[int]bool
	if pf.matcher != nil {
		pf.mu.Lock()
		hits := pf.matcher.Match(content)
		pf.mu.Unlock()

		found = make(map[int]bool, len(hits))
		for _, hit := range hits {
			found[hit] = true
		}
	}

	for _, s := range pf.structures {
		if hasAll(found, pf.required[s]) {
			result = append(result, s)
		}
	}
	return result
}

// AnchorCount returns the number of distinct anchors in the dictionary.
func (pf *Prefilter) AnchorCount() int {
	return len(pf.anchors)
}

// Anchors lists byte strings that every match of s must contain: literal runs
// of bytes_match patterns, equal string literals, and equal integer or
// pointer literals encoded with order. Float literals are never anchors since
// distinct encodings can compare equal.
func Anchors(s *types.Structure, order binary.ByteOrder) [][]byte {
	var out [][]byte
	for _, f := range s.Fields {
		for _, c := range f.Criteria {
			switch c.Kind {
			case types.CriteriaBytesMatch:
				p, ok := c.Value.(types.Pattern)
				if !ok || p.BytePattern == nil || p.Len() != f.Size {
					continue
				}
				if lit, ok := p.BytePattern.(interface{ Literals() [][]byte }); ok {
					out = append(out, lit.Literals()...)
				}
			case types.CriteriaEqual:
				if anchor := encodeLiteral(c.Value, order); len(anchor) > 0 {
					out = append(out, anchor)
				}
			}
		}
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func hasAll(found map[int]bool, indexes []int) bool {
	for _, i := range indexes {
		if !found[i] {
			return false
		}
	}
	return true
}

func encodeLiteral(v types.Literal, order binary.ByteOrder) []byte {
	switch lit := v.(type) {
	case types.Text:
		return append([]byte(nil), lit...)
	case types.Address:
		return put64(order, uint64(lit))
	case types.Number[uint8]:
		return []byte{lit.V}
	case types.Number[int8]:
		return []byte{byte(lit.V)}
	case types.Number[uint16]:
		return put16(order, lit.V)
	case types.Number[int16]:
		return put16(order, uint16(lit.V))
	case types.Number[uint32]:
		return put32(order, lit.V)
	case types.Number[int32]:
		return put32(order, uint32(lit.V))
	case types.Number[uint64]:
		return put64(order, lit.V)
	case types.Number[int64]:
		return put64(order, uint64(lit.V))
	}
	return nil
}

func put16(order binary.ByteOrder, v uint16) []byte {
	b := make([]byte, 2)
	order.PutUint16(b, v)
	return b
}

func put32(order binary.ByteOrder, v uint32) []byte {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return b
}

func put64(order binary.ByteOrder, v uint64) []byte {
	b := make([]byte, 8)
	order.PutUint64(b, v)
	return b
}
