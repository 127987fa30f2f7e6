package model

import (
	"errors"
	"fmt"
)

// Error is the single typed error surfaced by the recipe core.
//
// Codes:
//   - VALIDATION: malformed cursor, unknown sort field, invalid payload
//   - CONSISTENCY: cursor minted for a different sort configuration
//   - NOT_FOUND: recipe, collection or child item missing or not visible
//   - INVARIANT: stored data violates an internal invariant
//   - STORAGE: driver or transaction failure, surfaced as-is
//
// Callers branch on Code with the Is* helpers, which see through wrapping.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Resource names the kind of entity involved (NOT_FOUND only).
	Resource string

	// ID identifies the missing entity (NOT_FOUND only).
	ID string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes errors.
type ErrorCode string

const (
	ErrCodeValidation  ErrorCode = "VALIDATION"
	ErrCodeConsistency ErrorCode = "CONSISTENCY"
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeInvariant   ErrorCode = "INVARIANT"
	ErrCodeStorage     ErrorCode = "STORAGE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Resource != "" && e.ID != "" {
		msg = fmt.Sprintf("%s (%s=%s)", msg, e.Resource, e.ID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a VALIDATION error.
func NewValidationError(message string) *Error {
	return &Error{Code: ErrCodeValidation, Message: message}
}

// WrapValidationError creates a VALIDATION error with a cause.
func WrapValidationError(message string, err error) *Error {
	return &Error{Code: ErrCodeValidation, Message: message, Err: err}
}

// NewConsistencyError creates a CONSISTENCY error.
func NewConsistencyError(message string) *Error {
	return &Error{Code: ErrCodeConsistency, Message: message}
}

// NewNotFoundError creates a NOT_FOUND error for the given resource.
func NewNotFoundError(resource, id string) *Error {
	return &Error{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%s not found", resource),
		Resource: resource,
		ID:       id,
	}
}

// NewInvariantError creates an INVARIANT error.
func NewInvariantError(message string) *Error {
	return &Error{Code: ErrCodeInvariant, Message: message}
}

// WrapStorageError wraps a driver error as STORAGE. Errors that already
// carry a code are returned unchanged.
func WrapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: ErrCodeStorage, Message: op, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsConsistency reports whether err is a CONSISTENCY error.
func IsConsistency(err error) bool { return CodeOf(err) == ErrCodeConsistency }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsInvariant reports whether err is an INVARIANT error.
func IsInvariant(err error) bool { return CodeOf(err) == ErrCodeInvariant }

// IsStorage reports whether err is a STORAGE error.
func IsStorage(err error) bool { return CodeOf(err) == ErrCodeStorage }
