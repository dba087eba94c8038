// Package common defines shared constants and sentinel errors used across
// TaskKeeper components. Callers should use errors.Is to match the sentinel
// values and errors.As to extract a *ValidationError.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrorEmailTaken = errors.New("email already taken")

	// Service-level errors.
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorUnavailable     = errors.New("service unavailable")
	ErrorInternal        = errors.New("internal error")
)

// ValidationError reports a field-level input violation. Validation happens
// before any write, so a ValidationError guarantees no state was mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-qualified validation failure.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidationError unwraps err into a *ValidationError if it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
