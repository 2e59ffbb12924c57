package ratingdomain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks at the transport edges.
var (
	ErrValidation   = errors.New("validation failed")
	ErrPrecondition = errors.New("precondition failed")
	ErrPersistence  = errors.New("persistence failure")
)

// ValidationError rejects malformed input before anything is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PreconditionError rejects an operation the match state does not allow.
// The match is left as it was.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return "precondition: " + e.Reason }

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// PersistenceError wraps a store failure. Callers may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Retryable() bool { return true }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func preconditionf(format string, args ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) error { return validationf(format, args...) }

// NewPreconditionError builds a PreconditionError with a formatted reason.
func NewPreconditionError(format string, args ...any) error { return preconditionf(format, args...) }

// IsRetryable reports whether err is a transient store failure.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Retryable()
}
