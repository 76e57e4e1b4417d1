// Package apperror defines the application's error taxonomy.
//
// Every failure the service layer can report falls into one of four
// categories, each represented by a sentinel error:
//
//   - ErrValidation   → a form field was missing or malformed (user fixable)
//   - ErrNotFound     → the record doesn't exist, or belongs to someone else
//   - ErrConflict     → a uniqueness rule was violated (duplicate email)
//   - ErrUnauthorized → bad credentials or no session
//
// Handlers map these to user-visible outcomes (flash message, 404 page,
// inline form error); anything that doesn't match is a server fault.
//
// The AppError struct wraps a sentinel together with a human-readable
// message, so errors.Is() works through the whole chain while the
// handler still has something presentable to show.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // human-readable, safe to show the user
	Field   string // optional: form field causing the error
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
	}
}

func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s: %s", resource, message),
	}
}

// Unauthorized returns an AppError for failed authentication.
//
// Callers MUST use the same message for "unknown email" and "wrong
// password" — distinguishable messages let an attacker enumerate
// registered accounts.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
