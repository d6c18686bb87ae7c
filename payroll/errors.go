package payroll

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every InputError.
	ErrInvalidInput = errors.New("invalid schedule request")

	// ErrNoFutureEvents is returned when no payment falls after today.
	ErrNoFutureEvents = errors.New("could not produce any future salary events")
)

// InputError names the offending request field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// IsClientError returns true if the error is due to the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNoFutureEvents)
}
