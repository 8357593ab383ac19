// Package errors provides standardized domain errors with codes for the storefront API.
//
// Usage:
//
//	// In services - return typed errors
//	if emailTaken {
//	    return errors.Duplicate("email")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    // translate to 404
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeValidation:
//	        ...
//	    case errors.CodeUnavailable:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeInternal      Code = "INTERNAL"
	CodeUnavailable   Code = "UNAVAILABLE"
)

// ValidationKind identifies which invariant a validation failure violated.
type ValidationKind string

// Validation kinds carried in FieldError details.
const (
	KindRequiredField    ValidationKind = "required_field"
	KindLengthBound      ValidationKind = "length_bound"
	KindDuplicate        ValidationKind = "duplicate"
	KindInvalidReference ValidationKind = "invalid_reference"
	KindTargetMismatch   ValidationKind = "target_mismatch"
	KindInvalidValue     ValidationKind = "invalid_value"
)

// FieldError names the offending field and the violated constraint.
// Every failed invariant check surfaces one of these; nothing is swallowed.
type FieldError struct {
	Field      string         `json:"field"`
	Kind       ValidationKind `json:"kind"`
	Constraint string         `json:"constraint,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Fields returns the field-level details if this is a validation error.
func (e *Error) Fields() []FieldError {
	fields, _ := e.Details.([]FieldError)
	return fields
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
	ErrUnavailable   = &Error{Code: CodeUnavailable, Message: "store unavailable"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithFields creates a validation error carrying field details.
func ValidationWithFields(msg string, fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: fields}
}

// RequiredField reports a missing required field.
func RequiredField(field string) *Error {
	return ValidationWithFields(
		fmt.Sprintf("%s is required", field),
		FieldError{Field: field, Kind: KindRequiredField},
	)
}

// LengthBound reports a string length constraint violation.
func LengthBound(field, constraint string) *Error {
	return ValidationWithFields(
		fmt.Sprintf("%s %s", field, constraint),
		FieldError{Field: field, Kind: KindLengthBound, Constraint: constraint},
	)
}

// Duplicate reports a uniqueness violation on a declared unique field.
func Duplicate(field string) *Error {
	return ValidationWithFields(
		fmt.Sprintf("%s is already taken", field),
		FieldError{Field: field, Kind: KindDuplicate},
	)
}

// InvalidReference reports a reference to an entity that does not exist.
func InvalidReference(field string) *Error {
	return ValidationWithFields(
		fmt.Sprintf("%s references a missing entity", field),
		FieldError{Field: field, Kind: KindInvalidReference},
	)
}

// TargetMismatch reports a polymorphic reference that disagrees with its
// declared target type.
func TargetMismatch(field string) *Error {
	return ValidationWithFields(
		fmt.Sprintf("%s does not match the declared target type", field),
		FieldError{Field: field, Kind: KindTargetMismatch},
	)
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Unavailable creates a store-unavailable error. The core performs no retry
// itself; callers decide whether to retry.
func Unavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
