package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested listing does not exist.
	ErrNotFound = errors.New("listing not found")
	// ErrInvalidInput indicates a missing or malformed field.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrTransientStore indicates the persistence medium is unavailable; the request may be retried.
	ErrTransientStore = errors.New("listing store temporarily unavailable")
	// ErrInvalidTransition indicates a status change that the listing lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
