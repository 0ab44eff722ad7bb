package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a review or station does not exist (or is no longer active for mutating calls).
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniquely named entity already exists.
	ErrDuplicate = errors.New("already exists")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
