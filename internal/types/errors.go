package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for CloudTask errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// API error codes
const (
	API_REQUEST_FAILED ErrorCode = "API_REQUEST_FAILED"
	API_RATE_LIMITED   ErrorCode = "API_RATE_LIMITED"
	API_AUTH_FAILED    ErrorCode = "API_AUTH_FAILED"
	API_NOT_FOUND      ErrorCode = "API_NOT_FOUND"
)

// Store error codes
const (
	STORE_OPEN_FAILED      ErrorCode = "STORE_OPEN_FAILED"
	STORE_MIGRATION_FAILED ErrorCode = "STORE_MIGRATION_FAILED"
	STORE_QUERY_FAILED     ErrorCode = "STORE_QUERY_FAILED"
	STORE_NOT_FOUND        ErrorCode = "STORE_NOT_FOUND"
)

// Cache error codes
const (
	CACHE_READ_FAILED  ErrorCode = "CACHE_READ_FAILED"
	CACHE_WRITE_FAILED ErrorCode = "CACHE_WRITE_FAILED"
)

// Task error codes
const (
	TASK_INVALID   ErrorCode = "TASK_INVALID"
	TASK_NOT_FOUND ErrorCode = "TASK_NOT_FOUND"
)

// CloudTaskError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and carries a retryability hint
// the execution engine's default retry predicate inspects.
type CloudTaskError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *CloudTaskError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *CloudTaskError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *CloudTaskError) Is(target error) bool {
	var ctErr *CloudTaskError
	if errors.As(target, &ctErr) {
		return e.Code == ctErr.Code
	}
	return false
}

// NewError creates a new non-retryable CloudTaskError with the given code and message.
func NewError(code ErrorCode, message string) *CloudTaskError {
	return &CloudTaskError{Code: code, Message: message}
}

// NewRetryableError creates a new retryable CloudTaskError with the given code
// and message. Use this for transient failures that may succeed on retry
// (rate limits, network timeouts, 5xx responses).
func NewRetryableError(code ErrorCode, message string) *CloudTaskError {
	return &CloudTaskError{Code: code, Message: message, Retryable: true}
}

// WrapError creates a new non-retryable CloudTaskError that wraps an existing
// error. The wrapped error is accessible via Unwrap() for chain inspection.
func WrapError(code ErrorCode, message string, cause error) *CloudTaskError {
	return &CloudTaskError{Code: code, Message: message, Cause: cause}
}

// WrapRetryableError creates a retryable CloudTaskError wrapping an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *CloudTaskError {
	return &CloudTaskError{Code: code, Message: message, Retryable: true, Cause: cause}
}

// IsRetryable reports whether err carries a retryable hint anywhere in its
// chain. Errors without a CloudTaskError in the chain report false.
func IsRetryable(err error) bool {
	var ctErr *CloudTaskError
	if errors.As(err, &ctErr) {
		return ctErr.Retryable
	}
	return false
}
