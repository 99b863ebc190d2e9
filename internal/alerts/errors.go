package alerts

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for operations on an unknown alert id.
var ErrNotFound = errors.New("alert not found")

// ValidationError rejects a malformed alert request synchronously,
// before any state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid alert: %s", e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
