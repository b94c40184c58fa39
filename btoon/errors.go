package btoon

import (
	"errors"
	"fmt"
)

// Decode error kinds. Decode failures wrap one of these sentinels with the
// byte offset where the problem was detected; match with errors.Is.
var (
	// ErrUnknownTag is returned when a marker byte is not in the BTOON set.
	ErrUnknownTag = errors.New("btoon: unknown tag")

	// ErrTruncated is returned when a read would pass the end of the buffer.
	ErrTruncated = errors.New("btoon: truncated input")

	// ErrInvalidUTF8 is returned when string bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("btoon: invalid UTF-8 in string")

	// ErrIntOverflow is returned when an unsigned wire integer does not fit
	// the signed 64-bit value model.
	ErrIntOverflow = errors.New("btoon: integer overflow")

	// ErrMalformedExtension is returned when an extension body does not
	// hold a string name followed by a binary payload filling its length.
	ErrMalformedExtension = errors.New("btoon: malformed extension")

	// ErrCorruptEnvelope is returned when a compression envelope cannot be
	// unwrapped: unknown algorithm, failed decompression, or a decompressed
	// length that does not match the stored one.
	ErrCorruptEnvelope = errors.New("btoon: corrupt compression envelope")

	// ErrTruncatedHeader is returned by the streaming reader when a frame
	// header is cut short (1-3 of its 4 bytes present).
	ErrTruncatedHeader = errors.New("btoon: truncated frame header")

	// ErrIncompleteFrame is returned by the streaming reader when a frame
	// payload ends before its declared length.
	ErrIncompleteFrame = errors.New("btoon: incomplete frame")
)

// Validation error codes.
const (
	CodeNotAnObject         = "not_an_object"
	CodeMissingField        = "missing_field"
	CodeTypeMismatch        = "type_mismatch"
	CodeConstraintViolation = "constraint_violation"
	CodeUnknownField        = "unknown_field"
	CodeUnknownSchema       = "unknown_schema"
)

// ValidationError represents a single validation failure. Validation is
// fail-fast, so a validate call reports at most one.
type ValidationError struct {
	Code       string // Machine-readable code, one of the Code* constants
	Field      string // Offending field name, empty for value-level failures
	Constraint string // Violated constraint name for constraint_violation
	Message    string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("btoon: %s: %s", e.Field, e.Message)
	}
	return "btoon: " + e.Message
}

// EncodeError is returned by the Go bridge when a value outside the BTOON
// model is handed in. The core encoder itself cannot fail.
type EncodeError struct {
	Value any // The unsupported value
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("btoon: cannot encode value of type %T", e.Value)
}

func decodeErr(sentinel error, offset int) error {
	return fmt.Errorf("%w at offset %d", sentinel, offset)
}
