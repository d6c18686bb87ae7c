/*
Package payroll turns a monthly salary into a schedule of future payments.

PURPOSE:
  Applies the payroll-calendar rules on top of the calendar package:
  which date a nominal payment day actually lands on, which accrual period
  the payment covers, and how much of the salary it carries.

KEY TYPES:
  Resolver:          nominal day-of-month -> actual payment date
  PeriodCalculator:  (month, payment day) -> accrual period + divisor
  Generator:         salary + vacations -> []SalaryEvent

SEE ALSO:
  - calendar/cache.go: working-day lookups
  - vacation/: parsing vacation ranges from text
*/
package payroll

import (
	"context"
	"time"

	"github.com/warp/payday-engine/calendar"
)

// WorkingDays is the part of calendar.Cache the payroll rules rely on.
type WorkingDays interface {
	IsWorking(ctx context.Context, d calendar.Date) bool
	LoadRange(ctx context.Context, from, to calendar.Date)
	CountWorking(ctx context.Context, p calendar.Period, vacations calendar.Vacations) int
}

var _ WorkingDays = (*calendar.Cache)(nil)

// maxRollback bounds backward walks so a calendar with no working days
// cannot loop forever.
const maxRollback = 366

// =============================================================================
// PAYMENT DATE RESOLVER
// =============================================================================

// Resolver maps a nominal payment day to the date money is actually paid.
// Vacations never affect it; only the holiday/weekend calendar does.
type Resolver struct {
	Days WorkingDays
}

// Resolve returns the payment date for nominalDay in (year, month):
//  1. nominalDay past the end of the month: last working day of the month
//  2. the candidate day itself if it is working
//  3. otherwise the nearest earlier working day
func (r *Resolver) Resolve(ctx context.Context, year int, month time.Month, nominalDay int) calendar.Date {
	if nominalDay > calendar.DaysIn(year, month) {
		return r.rollBack(ctx, calendar.EndOfMonth(year, month))
	}
	return r.rollBack(ctx, calendar.NewDate(year, month, nominalDay))
}

// rollBack walks backward from d until a working day is found.
func (r *Resolver) rollBack(ctx context.Context, d calendar.Date) calendar.Date {
	for i := 0; i < maxRollback; i++ {
		if r.Days.IsWorking(ctx, d) {
			return d
		}
		d = d.AddDays(-1)
	}
	return d
}
