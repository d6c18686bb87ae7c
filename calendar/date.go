/*
Package calendar provides the working-day engine used by payroll scheduling.

PURPOSE:
  Everything that answers "is this a working day?" lives here: the Date
  value type, inclusive Periods, vacation Ranges, the Provider boundary to
  the national day-type service, and the Cache that memoizes provider
  answers for the whole process run.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: a calendar day. Time-of-day is always zero, so two Dates are equal
    iff they name the same day.
  - Month helpers: StartOfMonth, EndOfMonth, DaysIn.

SEE ALSO:
  - period.go: inclusive date spans
  - cache.go: WorkingDayCache
  - vacation.go: vacation ranges
*/
package calendar

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar value
// =============================================================================

// Date is a calendar day stored as UTC midnight.
type Date struct {
	Time time.Time
}

// KeyLayout is the layout used for cache and storage keys.
const KeyLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current calendar day in loc (UTC when loc is nil).
func Today(now time.Time, loc *time.Location) Date {
	if loc != nil {
		now = now.In(loc)
	}
	return FromTime(now)
}

// ParseKey parses a "2006-01-02" key.
func ParseKey(s string) (Date, error) {
	t, err := time.Parse(KeyLayout, s)
	if err != nil {
		return Date{}, err
	}
	return FromTime(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return FromTime(d.Time.AddDate(0, 0, n)) }

// AddMonths moves to the first day of the month n months away. Unlike
// time.AddDate it never overflows into the following month.
func (d Date) AddMonths(n int) Date {
	return NewDate(d.Year(), d.Month()+time.Month(n), 1)
}

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Key returns the map/storage key for d.
func (d Date) Key() string { return d.Time.Format(KeyLayout) }

func (d Date) String() string { return d.Key() }

// Format formats d with a time layout.
func (d Date) Format(layout string) string { return d.Time.Format(layout) }

// =============================================================================
// MONTH UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month+1, 1).AddDays(-1)
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int { return EndOfMonth(year, month).Day() }

// MonthKey identifies a month, e.g. "2026-02".
func MonthKey(year int, month time.Month) string {
	return StartOfMonth(year, month).Format("2006-01")
}
