// Package apperr defines the error taxonomy shared by all usecases. Every
// error is a per-request, recoverable failure; none is fatal to the process.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrItemUnavailable        = errors.New("item unavailable")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrAlreadyInProgress      = errors.New("order already in progress")
	ErrNotReady               = errors.New("order not ready")
	ErrInvalidReason          = errors.New("invalid cancellation reason")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// ValidationError rejects malformed input before any state change.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
