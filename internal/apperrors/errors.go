package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidTransition indicates that the request is not in the state the operation requires.
// Lost races and attempts on terminal requests are reported the same way.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrForbidden indicates that the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("not authorized")

// ErrUnauthorized indicates that no authenticated actor is present.
var ErrUnauthorized = errors.New("unauthenticated")

// ErrInternal indicates a persistence or coordination failure.
var ErrInternal = errors.New("internal server error")

// AppError carries an HTTP-ish code and a safe message alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
