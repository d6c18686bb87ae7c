package calendar

import (
	cal "github.com/rickar/cal/v2"
)

// weekdays is a business calendar with no holidays: Monday to Friday work.
var weekdays = cal.NewBusinessCalendar()

// WeekendHeuristic classifies a day without the provider: Saturdays and
// Sundays are non-working, everything else is working.
func WeekendHeuristic(d Date) bool {
	return weekdays.IsWorkday(d.Time)
}
