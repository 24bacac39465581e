// Package errors provides typed errors for the application
package errors

import "errors"

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeInvalidArgument
	ErrorTypeConstraintViolation
	ErrorTypeInternal
)

// baseError is the base implementation for all error types
type baseError struct {
	msg   string
	cause error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ValidationError represents invalid user input
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg}}
}

// InvalidArgumentError is returned when a caller breaks an API contract,
// e.g. omits a required identifier
type InvalidArgumentError struct {
	baseError
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(msg string) *InvalidArgumentError {
	return &InvalidArgumentError{baseError{msg: msg}}
}

// ConstraintViolationError represents a uniqueness or foreign key violation
// reported by the persistence layer
type ConstraintViolationError struct {
	baseError
}

// NewConstraintViolationError creates a new ConstraintViolationError wrapping cause
func NewConstraintViolationError(msg string, cause error) *ConstraintViolationError {
	return &ConstraintViolationError{baseError{msg: msg, cause: cause}}
}

// InternalError represents an unexpected failure
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg}}
}

// IsValidationError checks if error is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsInvalidArgumentError checks if error is an InvalidArgumentError
func IsInvalidArgumentError(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// IsConstraintViolationError checks if error is a ConstraintViolationError
func IsConstraintViolationError(err error) bool {
	var target *ConstraintViolationError
	return errors.As(err, &target)
}

// IsInternalError checks if error is an InternalError
func IsInternalError(err error) bool {
	var target *InternalError
	return errors.As(err, &target)
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for untyped errors
func TypeOf(err error) ErrorType {
	switch {
	case IsValidationError(err):
		return ErrorTypeValidation
	case IsInvalidArgumentError(err):
		return ErrorTypeInvalidArgument
	case IsConstraintViolationError(err):
		return ErrorTypeConstraintViolation
	default:
		return ErrorTypeInternal
	}
}

// String returns a short label suitable for metrics and logs
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeInvalidArgument:
		return "invalid_argument"
	case ErrorTypeConstraintViolation:
		return "constraint_violation"
	default:
		return "internal"
	}
}
