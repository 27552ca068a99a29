package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrConfig        = errors.New("config error")
	ErrInput         = errors.New("input error")
	ErrPatternLength = errors.New("pattern length mismatch")
)

// ConfigError describes a malformed structure descriptor entry. Field and
// Criterion are zero-based indexes, -1 when not applicable.
type ConfigError struct {
	Structure string
	Field     int
	Criterion int
	Reason    string
	Err       error
}

// NewConfigError builds a ConfigError not tied to a field or criterion.
func NewConfigError(structure, reason string, err error) *ConfigError {
	return &ConfigError{Structure: structure, Field: -1, Criterion: -1, Reason: reason, Err: err}
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Structure != "" {
		fmt.Fprintf(&b, " structure %s", e.Structure)
	}
	if e.Field >= 0 {
		fmt.Fprintf(&b, " field %d", e.Field)
	}
	if e.Criterion >= 0 {
		fmt.Fprintf(&b, " criterion %d", e.Criterion)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// InputError reports that a target buffer could not be obtained.
type InputError struct {
	Source string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Source, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool { return target == ErrInput }

// PatternLengthMismatchError reports a wildcard pattern whose token count
// differs from the span it is tested against.
type PatternLengthMismatchError struct {
	Pattern string
	Tokens  int
	Span    int

	// Filled in by the scanner when known.
	Structure string
	Field     int
	Criterion int
	Offset    int
}

func (e *PatternLengthMismatchError) Error() string {
	msg := fmt.Sprintf("pattern %q has %d tokens, span is %d bytes", e.Pattern, e.Tokens, e.Span)
	if e.Structure != "" {
		msg = fmt.Sprintf("structure %s field %d: %s", e.Structure, e.Field, msg)
	}
	return msg
}

func (e *PatternLengthMismatchError) Is(target error) bool { return target == ErrPatternLength }
