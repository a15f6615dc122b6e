// Package types holds the coded error type shared across the module's
// internal packages. Validation findings are not errors; they are reported
// as bagel.Violation values. The errors here cover the fatal conditions
// that abort schema loading, configuration, or table ingestion.
package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for digest errors.
type ErrorCode string

// Schema error codes
const (
	SCHEMA_NOT_FOUND    ErrorCode = "SCHEMA_NOT_FOUND"
	SCHEMA_PARSE_FAILED ErrorCode = "SCHEMA_PARSE_FAILED"
)

// Table ingestion error codes
const (
	TABLE_PARSE_FAILED ErrorCode = "TABLE_PARSE_FAILED"
)

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// DigestError represents a structured error with error code, message, and
// optional cause. Errors with the same code match under errors.Is.
type DigestError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *DigestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *DigestError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *DigestError) Is(target error) bool {
	var digestErr *DigestError
	if errors.As(target, &digestErr) {
		return e.Code == digestErr.Code
	}
	return false
}

// NewError creates a new DigestError with the given code and message.
func NewError(code ErrorCode, message string) *DigestError {
	return &DigestError{
		Code:    code,
		Message: message,
	}
}

// NewErrorf creates a new DigestError with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *DigestError {
	return &DigestError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError creates a new DigestError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *DigestError {
	return &DigestError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
