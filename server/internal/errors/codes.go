package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for simulator operations.
type ErrorCode string

const (
	// ErrCodeValidationFailed indicates missing phone number or network at
	// session-creation time. The action is aborted before any network call.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodeConnectivity indicates the endpoint was unreachable or timed out.
	ErrCodeConnectivity ErrorCode = "CONNECTIVITY"
	// ErrCodeRemoteStatus indicates a non-success status from the endpoint.
	ErrCodeRemoteStatus ErrorCode = "REMOTE_STATUS"
	// ErrCodeSessionBusy indicates a call for the session is already in flight.
	ErrCodeSessionBusy ErrorCode = "SESSION_BUSY"
	// ErrCodeNotFound indicates the requested session does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// SimError represents a structured error for simulator operations.
type SimError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SimError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SimError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *SimError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// ValidationFailed creates a validation error.
func ValidationFailed(msg string) *SimError {
	return &SimError{Code: ErrCodeValidationFailed, Message: msg}
}

// SessionBusy creates a session-busy error.
func SessionBusy(sessionID string) *SimError {
	return &SimError{
		Code:    ErrCodeSessionBusy,
		Message: fmt.Sprintf("a call is already in flight for session %s", sessionID),
	}
}

// NotFound creates a not-found error.
func NotFound(sessionID string) *SimError {
	return &SimError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("session not found: %s", sessionID),
	}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *SimError {
	return &SimError{Code: ErrCodeInvalidArgument, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *SimError {
	return &SimError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if simErr, ok := err.(*SimError); ok {
		return simErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
func GetCodeFromError(err error) ErrorCode {
	if simErr, ok := err.(*SimError); ok {
		return simErr.Code
	}
	return ErrCodeInvalidArgument
}
