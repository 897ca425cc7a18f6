// Package errs defines the sentinel errors shared by all typebin packages.
//
// Errors fall into three classes, each testable with errors.Is:
//   - ErrInsufficientCapacity: the destination is too small. Recoverable, grow and retry.
//   - ErrFormat: the bytes cannot be safely interpreted as the expected type. Never retried.
//   - ErrUnsupportedType: a type has no binary, diffable or fallback representation.
package errs

import (
	"errors"
	"fmt"
	"reflect"
)

// Capacity errors.
var (
	ErrInsufficientCapacity = errors.New("insufficient destination capacity")
	ErrPayloadTooLarge      = errors.New("payload exceeds int32 length prefix")
)

// Format errors. Every error in this group wraps ErrFormat.
var (
	ErrFormat             = errors.New("invalid binary format")
	ErrInvalidHeaderSize  = fmt.Errorf("%w: invalid header size", ErrFormat)
	ErrVersionMismatch    = fmt.Errorf("%w: converter version mismatch", ErrFormat)
	ErrTypeMismatch       = fmt.Errorf("%w: unexpected type tag", ErrFormat)
	ErrNotBinary          = fmt.Errorf("%w: payload is not binary encoded", ErrFormat)
	ErrInvalidLength      = fmt.Errorf("%w: invalid length prefix", ErrFormat)
	ErrCorruptedBlock     = fmt.Errorf("%w: corrupted compressed block", ErrFormat)
	ErrInvalidCompression = fmt.Errorf("%w: invalid compression method", ErrFormat)
	ErrFingerprint        = fmt.Errorf("%w: user type fingerprint mismatch", ErrFormat)
)

// Configuration and type resolution errors.
var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrInvalidTypeSize = errors.New("invalid fixed type size")
	ErrInvalidVersion  = errors.New("invalid converter version")
	ErrInvalidLevel    = errors.New("invalid compression level")
	ErrUnknownMethod   = errors.New("unknown compression method")
	ErrOutOfRange      = errors.New("segment out of range")
)

// UnsupportedTypeError reports a Go type that cannot be given any representation.
// It is raised once, when a converter or element descriptor is resolved.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %v: %s", e.Type, e.Reason)
}

// Is reports whether target is ErrUnsupportedType.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// Formatf returns an error wrapping cause (which should be one of the ErrFormat group)
// with additional context.
func Formatf(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", cause, fmt.Sprintf(format, args...))
}

// IsCapacity reports whether err signals that the destination buffer must grow.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrInsufficientCapacity)
}

// IsFormat reports whether err signals malformed or mismatched input bytes.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}
