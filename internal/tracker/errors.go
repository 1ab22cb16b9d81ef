package tracker

import (
	"errors"
	"strings"
)

var (
	// ErrValidation wraps every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when the referenced user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when registering a name that is taken.
	ErrConflict = errors.New("user already exists")
)

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(details ...string) error {
	return &ValidationError{Details: details}
}
