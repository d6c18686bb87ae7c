package calendar

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProvider wraps every failure reported by a Provider. The cache never
	// returns it; it is logged and replaced by the weekend heuristic.
	ErrProvider = errors.New("calendar provider failure")

	// ErrInvalidMonthData is returned when a month vector does not have one
	// entry per day of the month.
	ErrInvalidMonthData = errors.New("invalid month data")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// MonthDataError describes a month vector of the wrong length.
type MonthDataError struct {
	Year  int
	Month time.Month
	Got   int
	Want  int
}

func (e *MonthDataError) Error() string {
	return fmt.Sprintf("month %s: got %d days, want %d", MonthKey(e.Year, e.Month), e.Got, e.Want)
}

func (e *MonthDataError) Unwrap() error { return ErrInvalidMonthData }

// ValidateMonth checks that days has exactly one entry per day of month.
func ValidateMonth(year int, month time.Month, days []bool) error {
	if want := DaysIn(year, month); len(days) != want {
		return &MonthDataError{Year: year, Month: month, Got: len(days), Want: want}
	}
	return nil
}
