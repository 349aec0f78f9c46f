// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors. The specific sentinels wrap ErrValidation so that
	// errors.Is(err, ErrValidation) matches any of them.
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = fmt.Errorf("%w: invalid input", ErrValidation)
	ErrEmptyValue      = fmt.Errorf("%w: value cannot be empty", ErrValidation)
	ErrNegativeValue   = fmt.Errorf("%w: value cannot be negative", ErrValidation)
	ErrValueOutOfRange = fmt.Errorf("%w: value out of range", ErrValidation)
	ErrUnknownDomain   = fmt.Errorf("%w: unknown growth domain", ErrValidation)
	ErrOutOfOrder      = fmt.Errorf("%w: out-of-order activity", ErrValidation)

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "growth", "goal", "insight"
	Op      string // Operation that failed, e.g., "RecordActivity"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is reports whether the error matches the kind or the wrapped error.
func (e *DomainError) Is(target error) bool {
	return errors.Is(e.Kind, target) || errors.Is(e.Err, target)
}

// NewValidationError creates a validation DomainError.
func NewValidationError(domain, op, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: ErrValidation, Message: message}
}

// NewNotFoundError creates a not-found DomainError.
func NewNotFoundError(domain, op, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: ErrNotFound, Message: message}
}

// NewStateError creates an invalid-state DomainError.
func NewStateError(domain, op, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: ErrInvalidState, Message: message}
}

// Wrap attaches a domain/op context to an arbitrary error, preserving the
// error chain.
func Wrap(domain, op string, err error) *DomainError {
	if err == nil {
		return nil
	}
	return &DomainError{Domain: domain, Op: op, Kind: err, Message: err.Error(), Err: err}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsStateError reports whether err is an invalid-state failure.
func IsStateError(err error) bool { return errors.Is(err, ErrInvalidState) }
