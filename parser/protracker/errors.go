package protracker

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when the stream ends before the module does.
	ErrTruncated = errors.New("truncated module")
	// ErrInvalidData is returned when a byte or nibble can't be decoded.
	ErrInvalidData = errors.New("invalid module data")
)

// ParseError records where in the stream parsing stopped and why.
type ParseError struct {
	Offset int64  // Byte offset at the start of the failed read.
	What   string // What was being read, e.g. "sample 3 header".
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s: %v", e.Offset, e.What, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EffectError reports an effect nibble with no matching effect type.
type EffectError struct {
	Nibble   uint8
	Extended bool // True if the nibble was an extended effect sub-kind.
}

func (e *EffectError) Error() string {
	if e.Extended {
		return fmt.Sprintf("invalid extended effect type 0x%x", e.Nibble)
	}
	return fmt.Sprintf("invalid effect type 0x%x", e.Nibble)
}

// Is makes every EffectError match ErrInvalidData.
func (e *EffectError) Is(target error) bool {
	return target == ErrInvalidData
}
