package status

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired marks calls made without a valid session, or rejected
	// by the backend with a 401. Callers clear the session and do not retry.
	ErrAuthRequired = errors.New("session: authentication required")

	// ErrDuplicate marks a cart add for a (user, ticket type) pair that
	// already has a line. Callers must point the user at the existing line
	// instead of retrying.
	ErrDuplicate = errors.New("cart: line already exists for ticket type")

	// ErrNotFound marks lookups of unknown ids.
	ErrNotFound = errors.New("lookup: not found")

	// ErrUnavailable marks transient backend failures: network errors,
	// 5xx responses and bodies that cannot be decoded.
	ErrUnavailable = errors.New("backend: unavailable")
)

// ValidationError reports malformed input caught before any backend call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
