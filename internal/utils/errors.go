package utils

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Callers test for them with errors.Is.
var (
	// ErrFileFormat marks a truncated or malformed Calvin stream.
	ErrFileFormat = errors.New("calvin: malformed file")

	// ErrInvalidVersion marks a stream whose magic or version byte is not recognized.
	ErrInvalidVersion = errors.New("calvin: invalid file version")

	// ErrTypeMismatch is returned by checked value accessors used with the wrong kind.
	ErrTypeMismatch = errors.New("calvin: type mismatch")

	// ErrIndexOutOfRange is returned for row, column or entry indices outside a table.
	ErrIndexOutOfRange = errors.New("calvin: index out of range")

	// ErrKindNotFound is returned when a data set kind was not declared for a file.
	ErrKindNotFound = errors.New("calvin: data set kind not found for file")

	// ErrNotInitialized is returned when a buffered writer is used before Initialize.
	ErrNotInitialized = errors.New("calvin: writer not initialized")

	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("calvin: writer already initialized")

	// ErrClosed is returned by handles used after Close.
	ErrClosed = errors.New("calvin: use of closed handle")

	// ErrBatchAborted is returned by a buffered writer after a failed flush.
	ErrBatchAborted = errors.New("calvin: buffered batch aborted by earlier failure")
)

// CalvinError represents a structured Calvin error.
type CalvinError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *CalvinError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// WrapError creates a contextual error.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &CalvinError{
		Context: context,
		Cause:   cause,
	}
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *CalvinError) Unwrap() error {
	return e.Cause
}

// FormatError wraps ErrFileFormat with a formatted detail message.
func FormatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFileFormat, fmt.Sprintf(format, args...))
}

// RangeError wraps ErrIndexOutOfRange with the offending index and bound.
func RangeError(what string, index, limit int) error {
	return fmt.Errorf("%w: %s %d not in [0, %d)", ErrIndexOutOfRange, what, index, limit)
}
