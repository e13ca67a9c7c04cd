// Package errors provides structured error types for sekernel.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - CACHE_*: Lookup table persistence failures
//   - NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// The numeric kernel functions never return errors. Codes are only produced
// at the edges: parameter validation, orientation resolution, cache I/O and
// field/table decoding.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParams, "D33 must be positive, got %g", d33)
//	if errors.Is(err, errors.ErrCodeInvalidParams) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCacheRead, origErr, "decode table %s", key)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes. Each maps to one HTTP status in [HTTPStatus].
const (
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidParams       Code = "INVALID_PARAMS"
	ErrCodeInvalidOrientations Code = "INVALID_ORIENTATIONS"
	ErrCodeInvalidFormat       Code = "INVALID_FORMAT"
	ErrCodeInvalidPath         Code = "INVALID_PATH"
	ErrCodeShapeMismatch       Code = "SHAPE_MISMATCH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeCacheRead  Code = "CACHE_READ"
	ErrCodeCacheWrite Code = "CACHE_WRITE"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidParams:       http.StatusBadRequest,
	ErrCodeInvalidOrientations: http.StatusBadRequest,
	ErrCodeInvalidFormat:       http.StatusBadRequest,
	ErrCodeInvalidPath:         http.StatusBadRequest,
	ErrCodeShapeMismatch:       http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeFileNotFound:        http.StatusNotFound,
	ErrCodeUnsupported:         http.StatusNotImplemented,
}

// Error carries a [Code] alongside the message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like [New] but records cause for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix and cause for
// an *Error, and err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the status code the API answers with. Errors
// without a known code are internal.
func HTTPStatus(err error) int {
	if status, ok := httpStatus[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
