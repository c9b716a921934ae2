// Package apperror defines the typed failures returned by the store and
// service layers. Only the HTTP handlers translate them into status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // actual error
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Fields  []FieldError // Optional: every invalid field, for multi-field validation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

// Invalid bundles several field errors into one validation failure.
// The first field's message becomes the top-level message.
func Invalid(fields []FieldError) *AppError {
	if len(fields) == 0 {
		return ValidationFailed("", "invalid input")
	}
	return &AppError{
		Err:     ErrValidation,
		Message: fields[0].Message,
		Field:   fields[0].Field,
		Fields:  fields,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// ConflictMessage is Conflict with a caller-supplied message, e.g. "already shared".
func ConflictMessage(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidRequest is a well-formed request that makes no sense for the
// current state, such as sharing a trip with its own owner.
func InvalidRequest(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidRequest,
		Message: message,
	}
}

// Unauthenticated means no valid session or wrong credentials.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}
