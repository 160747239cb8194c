package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced id does not exist. The
// operation is a no-op.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or invalid required field. The
// operation is aborted with no state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
