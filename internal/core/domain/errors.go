package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrVisitNotFound      = fmt.Errorf("visit %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrNoData             = fmt.Errorf("no data %w", ErrNotFound)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrProfileInactive    = errors.New("profile inactive")
)

// ValidationError describes a rejected parameter. Cause carries the structured
// detail (for example validator field errors) when one exists.
type ValidationError struct {
	Message string
	Cause   any
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError with the given message and no cause.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}
