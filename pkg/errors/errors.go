// Package errors provides structured error types for the Atlas application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, TUI, and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (operation aborted, prior state kept)
//   - *_NOT_FOUND: A referenced map, hotspot, or document is absent
//   - DUPLICATE_*: Creating an id that already exists
//   - CONSISTENCY/HISTORY_CORRUPTED: Internal state degraded to a safe condition
//   - STORE_ERROR/RENDER_ERROR: Infrastructure failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMapNotFound, "map %q does not exist", id)
//	if errors.Is(err, errors.ErrCodeMapNotFound) {
//	    // Handle missing map
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "load document %q", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidMapID    Code = "INVALID_MAP_ID"
	ErrCodeInvalidHotspot  Code = "INVALID_HOTSPOT"
	ErrCodeInvalidImageRef Code = "INVALID_IMAGE_REF"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeMapNotFound      Code = "MAP_NOT_FOUND"
	ErrCodeHotspotNotFound  Code = "HOTSPOT_NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"

	// Duplicate identifier errors (treated as validation per the mutation contract)
	ErrCodeDuplicateMapID Code = "DUPLICATE_MAP_ID"

	// Consistency errors: state degraded to a safe condition instead of crashing
	ErrCodeConsistency      Code = "CONSISTENCY"
	ErrCodeHistoryCorrupted Code = "HISTORY_CORRUPTED"

	// Infrastructure errors
	ErrCodeStore       Code = "STORE_ERROR"
	ErrCodeRender      Code = "RENDER_ERROR"
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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

// IsValidation reports whether err belongs to the validation category,
// including duplicate-id rejections. Validation failures abort the
// operation and leave prior state untouched.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidMapID, ErrCodeInvalidHotspot,
		ErrCodeInvalidImageRef, ErrCodeInvalidDocument, ErrCodeDuplicateMapID:
		return true
	}
	return false
}

// IsNotFound reports whether err belongs to the not-found category.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeMapNotFound, ErrCodeHotspotNotFound, ErrCodeDocumentNotFound:
		return true
	}
	return false
}

// IsConsistency reports whether err signals a degraded-state condition
// (current map vanished, history pointing at a missing map).
func IsConsistency(err error) bool {
	switch GetCode(err) {
	case ErrCodeConsistency, ErrCodeHistoryCorrupted:
		return true
	}
	return false
}
