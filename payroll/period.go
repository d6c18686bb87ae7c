package payroll

import (
	"context"
	"time"

	"github.com/warp/payday-engine/calendar"
)

// =============================================================================
// PERIOD RULES - Which days a payment compensates
// =============================================================================

// Rule identifies how an accrual period is derived.
type Rule int

const (
	// RuleMidMonthStandard: 1st-15th of the payment month (the advance).
	RuleMidMonthStandard Rule = iota
	// RuleStandard: 16th to the last day of the previous month.
	RuleStandard
	// RuleDecemberEarly: Dec 1-19, paid on the 26th.
	RuleDecemberEarly
	// RuleJanuaryCarryover: Dec 20-31 of the prior year, paid in January.
	RuleJanuaryCarryover
	// RuleDecemberMidMonth: Nov 16-30, paid on Dec 14.
	RuleDecemberMidMonth
)

func (r Rule) String() string {
	switch r {
	case RuleStandard:
		return "standard"
	case RuleDecemberEarly:
		return "decemberEarly"
	case RuleJanuaryCarryover:
		return "januaryCarryover"
	case RuleDecemberMidMonth:
		return "decemberMidMonth"
	default:
		return "midMonthStandard"
	}
}

// SettlementDay is the payment day that settles the previous month.
const SettlementDay = 14

type ruleKey struct {
	month time.Month
	day   int
}

// exceptions override the month-independent defaults.
var exceptions = map[ruleKey]Rule{
	{time.December, DecemberDay}: RuleDecemberEarly,
	{time.January, SettlementDay}: RuleJanuaryCarryover,
	{time.December, SettlementDay}: RuleDecemberMidMonth,
}

// RuleFor returns the rule for a payment on paymentDay of month.
func RuleFor(month time.Month, paymentDay int) Rule {
	if r, ok := exceptions[ruleKey{month, paymentDay}]; ok {
		return r
	}
	if paymentDay == SettlementDay {
		return RuleStandard
	}
	return RuleMidMonthStandard
}

// Period applies the rule to a payment in (year, month).
func (r Rule) Period(year int, month time.Month) calendar.Period {
	switch r {
	case RuleDecemberEarly:
		return calendar.Period{Start: calendar.NewDate(year, time.December, 1), End: calendar.NewDate(year, time.December, 19)}
	case RuleJanuaryCarryover:
		return calendar.Period{Start: calendar.NewDate(year-1, time.December, 20), End: calendar.NewDate(year-1, time.December, 31)}
	case RuleDecemberMidMonth:
		return calendar.Period{Start: calendar.NewDate(year, time.November, 16), End: calendar.NewDate(year, time.November, 30)}
	case RuleStandard:
		prev := calendar.StartOfMonth(year, month).AddMonths(-1)
		return calendar.Period{
			Start: calendar.NewDate(prev.Year(), prev.Month(), 16),
			End:   calendar.EndOfMonth(prev.Year(), prev.Month()),
		}
	default:
		return calendar.Period{Start: calendar.NewDate(year, month, 1), End: calendar.NewDate(year, month, 15)}
	}
}

// =============================================================================
// PERIOD CALCULATOR
// =============================================================================

// Accrual is the period a payment covers plus the daily-rate divisor.
type Accrual struct {
	Rule   Rule
	Period calendar.Period
	// TotalWorkingDays counts working days (vacations ignored) in the whole
	// month containing Period.Start, not just in the period itself.
	TotalWorkingDays int
}

// PeriodCalculator derives accrual periods.
type PeriodCalculator struct {
	Days WorkingDays
}

// PeriodFor returns the accrual for a payment on paymentDay of (year,
// month). The result depends only on (month, paymentDay), never on the
// resolved payment date.
func (pc *PeriodCalculator) PeriodFor(ctx context.Context, year int, month time.Month, paymentDay int) Accrual {
	rule := RuleFor(month, paymentDay)
	period := rule.Period(year, month)
	reference := calendar.MonthPeriod(period.Start.Year(), period.Start.Month())
	return Accrual{
		Rule:             rule,
		Period:           period,
		TotalWorkingDays: pc.Days.CountWorking(ctx, reference, nil),
	}
}
