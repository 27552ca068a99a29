// Package pattern implements IDA-style wildcard byte patterns such as
// "48 8B ?? ?? 41 ?".
package pattern

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/revoverflow/walker/pkg/types"
)

// Pattern is a compiled wildcard byte pattern. It is immutable and safe for
// concurrent use.
type Pattern struct {
	source   string
	bytes    []byte
	wildcard []bool
}

var _ types.BytePattern = (*Pattern)(nil)

// Compile parses whitespace separated tokens. Each token is either a one or
// two digit hex byte or a wildcard ("?" or "??").
func Compile(pattern string) (*Pattern, error) {
	parts := strings.Fields(pattern)
	if len(parts) == 0 {
		return nil, errors.New("empty pattern")
	}

	p := &Pattern{
		source:   strings.Join(parts, " "),
		bytes:    make([]byte, len(parts)),
		wildcard: make([]bool, len(parts)),
	}

	for i, part := range parts {
		if isWildcard(part) {
			p.wildcard[i] = true
			continue
		}
		if len(part) > 2 {
			return nil, fmt.Errorf("invalid hex token %q at position %d", part, i)
		}
		if len(part) == 1 {
			part = "0" + part
		}
		decoded, err := hex.DecodeString(part)
		if err != nil || len(decoded) != 1 {
			return nil, fmt.Errorf("invalid hex token %q at position %d", parts[i], i)
		}
		p.bytes[i] = decoded[0]
	}

	return p, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

func isWildcard(token string) bool {
	return token == "?" || token == "??"
}

// Len returns the token count.
func (p *Pattern) Len() int {
	return len(p.bytes)
}

func (p *Pattern) String() string {
	return p.source
}

// Match tests span against the pattern. When the token count differs from
// len(span) it returns false and a *types.PatternLengthMismatchError.
func (p *Pattern) Match(span []byte) (bool, error) {
	if len(span) != len(p.bytes) {
		return false, &types.PatternLengthMismatchError{
			Pattern: p.source,
			Tokens:  len(p.bytes),
			Span:    len(span),
		}
	}
	for i, b := range span {
		if p.wildcard[i] {
			continue
		}
		if b != p.bytes[i] {
			return false, nil
		}
	}
	return true, nil
}

// Literals returns the maximal runs of non-wildcard bytes, in order.
func (p *Pattern) Literals() [][]byte {
	var runs [][]byte
	start := -1
	for i := range p.bytes {
		if p.wildcard[i] {
			if start >= 0 {
				runs = append(runs, append([]byte(nil), p.bytes[start:i]...))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, append([]byte(nil), p.bytes[start:]...))
	}
	return runs
}

// FromString renders s as a pattern of literal bytes, padded with wildcards
// up to minLength tokens. A '?' in s becomes a wildcard.
func FromString(s string, minLength int) string {
	if s == "" {
		return ""
	}

	var builder strings.Builder
	length := len(s)
	if minLength > length {
		length = minLength
	}

	for i := 0; i < length; i++ {
		if i > 0 {
			builder.WriteString(" ")
		}
		if i >= len(s) || s[i] == '?' {
			builder.WriteString("??")
			continue
		}
		fmt.Fprintf(&builder, "%02X", s[i])
	}

	return builder.String()
}
