package sign

import (
	"fmt"
)

// Error represents a structured error from the sign package.
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	// ErrCodeNotFound indicates that a referenced document, field or signer does not exist.
	ErrCodeNotFound ErrorCode = "NOTF"

	// ErrCodeValidation indicates malformed input: a bad email address, out-of-range
	// field geometry, a value that fails the field's validation rule, etc.
	ErrCodeValidation ErrorCode = "VALD"

	// ErrCodeAuthorization indicates that a signer attempted an action they are not
	// entitled to: filling a field assigned to someone else, or acting out of turn
	// in a sequential workflow.
	ErrCodeAuthorization ErrorCode = "AUTH"

	// ErrCodeStateConflict indicates an operation attempted against a document or
	// signer whose current status forbids it (e.g. sending a non-draft document).
	ErrCodeStateConflict ErrorCode = "CONF"

	// ErrCodeInternal indicates internal processing failures.
	ErrCodeInternal ErrorCode = "INT"
)

// SignError represents a structured error from the sign package.
type SignError struct {
	// code is the error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *SignError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *SignError) Code() ErrorCode { return e.code }
func (e *SignError) Unwrap() error   { return e.wrapped }

// NewNotFoundError creates a not-found error.
// Use this whenever an operation references a document, field or signer id that
// does not exist. Not-found conditions are always surfaced, never silently dropped.
func NewNotFoundError(msg string) error {
	return &SignError{code: ErrCodeNotFound, message: msg}
}

// WrapNotFoundError wraps an existing error as a not-found error.
func WrapNotFoundError(err error, msg string) error {
	return &SignError{code: ErrCodeNotFound, message: msg, wrapped: err}
}

// NewValidationError creates a validation error for invalid input.
// Use this for malformed emails, out-of-range geometry, missing required
// attributes, or values that fail a field's validation rule. Validation errors
// are raised before any state is mutated.
func NewValidationError(msg string) error {
	return &SignError{code: ErrCodeValidation, message: msg}
}

// WrapValidationError wraps an existing error as a validation error.
func WrapValidationError(err error, msg string) error {
	return &SignError{code: ErrCodeValidation, message: msg, wrapped: err}
}

// NewAuthorizationError creates an authorization error.
// Use this when a signer attempts to fill a field assigned to a different signer
// or to act before their turn in a sequential workflow.
func NewAuthorizationError(msg string) error {
	return &SignError{code: ErrCodeAuthorization, message: msg}
}

// WrapAuthorizationError wraps an existing error as an authorization error.
func WrapAuthorizationError(err error, msg string) error {
	return &SignError{code: ErrCodeAuthorization, message: msg, wrapped: err}
}

// NewStateConflictError creates a state-conflict error.
// Use this when a document or signer status forbids the requested operation,
// e.g. sending a document that is not a draft or completing an already-signed signer.
func NewStateConflictError(msg string) error {
	return &SignError{code: ErrCodeStateConflict, message: msg}
}

// WrapStateConflictError wraps an existing error as a state-conflict error.
func WrapStateConflictError(err error, msg string) error {
	return &SignError{code: ErrCodeStateConflict, message: msg, wrapped: err}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &SignError{code: ErrCodeInternal, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &SignError{code: ErrCodeInternal, message: msg, wrapped: err}
}
