// Package api defines the HTTP API surface: request/response payload types,
// transport-level errors and the standard error response format shared by
// every handler and middleware.
package api

import "fmt"

// ErrorCode identifies a transport-level error category. Domain errors carry
// their own codes (see the sign package); these cover failures that happen
// before a request reaches the signing core.
type ErrorCode string

const (
	ErrCodeMalformedRequest  ErrorCode = "MALFORMED_REQUEST"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge   ErrorCode = "REQUEST_TOO_LARGE"
	ErrCodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

// APIError is a transport-level error with a stable code.
type APIError struct {
	code    ErrorCode
	message string
	wrapped error
}

func (e *APIError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *APIError) Code() ErrorCode { return e.code }
func (e *APIError) Unwrap() error   { return e.wrapped }

// NewMalformedRequestError indicates a request body that could not be decoded.
func NewMalformedRequestError(msg string) error {
	return &APIError{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps a decode failure.
func WrapMalformedRequestError(err error, msg string) error {
	return &APIError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewRateLimitError indicates the global rate limit was exceeded.
func NewRateLimitError(msg string) error {
	return &APIError{code: ErrCodeRateLimitExceeded, message: msg}
}

// NewRequestTooLargeError indicates a request body over the configured limit.
func NewRequestTooLargeError(msg string) error {
	return &APIError{code: ErrCodeRequestTooLarge, message: msg}
}

// NewInternalError indicates an unexpected server-side failure.
func NewInternalError(msg string) error {
	return &APIError{code: ErrCodeInternalError, message: msg}
}
