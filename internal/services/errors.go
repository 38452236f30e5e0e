package services

import (
	"errors"
	"fmt"
)

// Define common service errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict") // e.g., status changed by someone else
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// TransitionRejectedError carries the validator's verdict for a refused status change.
type TransitionRejectedError struct {
	Result ValidationResult
}

func (e *TransitionRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidTransition, e.Result.Error)
}

// Unwrap lets errors.Is(err, ErrInvalidTransition) match.
func (e *TransitionRejectedError) Unwrap() error { return ErrInvalidTransition }
