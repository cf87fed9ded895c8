// Package apperrors provides the application error taxonomy shared by the
// lifecycle service, the stores and the HTTP boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal_error"
)

// AppError carries a type, a human-readable message and an HTTP-equivalent code.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError creates a validation error (400).
func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf(format, args...),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error (404).
func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf(format, args...),
		Code:    http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error (409).
func NewConflictError(format string, args ...interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf(format, args...),
		Code:    http.StatusConflict,
	}
}

// NewInternalError creates an internal error (500). Storage details must not
// leak into the message; wrap them for logs instead.
func NewInternalError(format string, args ...interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: fmt.Sprintf(format, args...),
		Code:    http.StatusInternalServerError,
	}
}

// Get extracts an AppError from err, or nil if it is not one.
func Get(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Type == t
}
