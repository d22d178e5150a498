package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// FieldError describes a single field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError aggregates per-field failures into one error so a
// request reports every invalid field at once.
func NewValidationError(details []FieldError) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: "Invalid input data",
		Details: details,
	}
}

// Common domain errors.
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "User not found")
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "Task not found")
	ErrCategoryNotFound = NewError(ErrCodeNotFound, "Category not found")
	ErrTokenNotFound    = NewError(ErrCodeNotFound, "Refresh token not found")
	ErrTaskForbidden    = NewError(ErrCodeForbidden, "Cannot access another user's task")
	ErrInvalidPayload   = NewError(ErrCodeBadRequest, "Invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// AsDomainError extracts the domain error, if any.
func AsDomainError(err error) (*Error, bool) {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr, true
	}
	return nil, false
}
