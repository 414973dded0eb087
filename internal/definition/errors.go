package definition

import (
	"errors"
	"fmt"
)

// ValidationError reports a problem with one field of a document.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("definition: %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError extracts the *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func fieldError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func prefixError(prefix string, err error) error {
	if ve, ok := AsValidationError(err); ok {
		return fieldError(prefix+"."+ve.Field, ve.Reason)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
