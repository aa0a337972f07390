package codec

import (
	"errors"
	"fmt"
)

// Domain errors for codec operations.
var (
	// ErrFormat indicates malformed input to a decode operation.
	ErrFormat = errors.New("codec: malformed input")

	// ErrOutOfRange indicates a character outside the 8-bit code point range.
	ErrOutOfRange = errors.New("codec: character outside 8-bit range")
)

// FormatError describes where a decode operation found malformed input.
type FormatError struct {
	Op     string
	Index  int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: index %d: %s", e.Op, e.Index, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// OutOfRangeError reports a rune that the reject policy cannot represent.
type OutOfRangeError struct {
	Char  rune
	Index int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("binary encode: index %d: %q (U+%04X) exceeds 0xFF", e.Index, e.Char, e.Char)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
