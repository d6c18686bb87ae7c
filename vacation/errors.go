package vacation

import (
	"errors"
	"fmt"

	"github.com/warp/payday-engine/calendar"
)

var (
	// ErrNoVacations is returned when a text or file yields no ranges.
	ErrNoVacations = errors.New("could not parse any vacation entries")

	// ErrFileTooLarge is returned for uploads above MaxUploadBytes.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFile is returned for uploads with a disallowed extension.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// ParseError describes input that is not a date.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// ValidationError describes a range outside the allowed years.
type ValidationError struct {
	Range   calendar.Range
	MinYear int
	MaxYear int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("range %s outside years %d..%d", e.Range.Period(), e.MinYear, e.MaxYear)
}
