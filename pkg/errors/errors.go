// Package errors provides structured error types for the mind-map layout engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly rejection messages for structural edits
//   - Error wrapping with context preservation
//
// # Error Taxonomy
//
// Three codes describe the engine's own failure modes:
//   - INVARIANT_VIOLATION: an edit would break a tree invariant (promoting a
//     level-1 node, moving the root, reordering while auto-layout is off).
//     Detected before any mutation; the operation is a no-op.
//   - MISSING_REFERENCE: a binding points at an object that no longer exists.
//     The engine skips these internally and only reports them from lookups.
//   - GEOMETRY_DEGENERATE: fewer than three hull points or a zero-size box.
//
// The remaining codes cover host-side input and storage failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvariantViolation, "cannot promote level-1 node %s", id)
//	if errors.Is(err, errors.ErrCodeInvariantViolation) {
//	    // Show a non-fatal warning
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "commit scene %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine errors
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"
	ErrCodeMissingReference   Code = "MISSING_REFERENCE"
	ErrCodeGeometryDegenerate Code = "GEOMETRY_DEGENERATE"

	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidGrowthMode Code = "INVALID_GROWTH_MODE"
	ErrCodeInvalidFoldMode   Code = "INVALID_FOLD_MODE"
	ErrCodeInvalidSceneName  Code = "INVALID_SCENE_NAME"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"
	ErrCodeSceneNotFound Code = "SCENE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Invariant is shorthand for New(ErrCodeInvariantViolation, ...).
func Invariant(format string, args ...any) *Error {
	return New(ErrCodeInvariantViolation, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound reports whether err carries any of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeNodeNotFound, ErrCodeSceneNotFound:
		return true
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
