package calendar

import "time"

// =============================================================================
// PERIOD - Inclusive span of days
// =============================================================================

// Period is the inclusive span [Start, End]. A period whose End precedes
// its Start is empty.
//
// Examples:
//   - First half of March: Mar 1 - Mar 15
//   - Year-end carryover: Dec 20 - Dec 31
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod returns the whole month as a Period.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if the date is within the period [Start, End]
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Months returns the first day of every month the period touches.
func (p Period) Months() []Date {
	var months []Date
	last := StartOfMonth(p.End.Year(), p.End.Month())
	for current := StartOfMonth(p.Start.Year(), p.Start.Month()); current.BeforeOrEqual(last); current = current.AddMonths(1) {
		months = append(months, current)
	}
	return months
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
