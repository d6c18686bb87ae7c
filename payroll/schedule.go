package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/warp/payday-engine/calendar"
)

// =============================================================================
// SALARY SCHEDULE GENERATOR
// =============================================================================

// MaxCount bounds the number of events a single request may ask for.
const MaxCount = 60

// SalaryEvent is one computed payment. Values are never mutated after
// Generate returns them.
type SalaryEvent struct {
	Date                 calendar.Date
	NominalDay           int
	Rule                 Rule
	Amount               int64
	DailyRate            decimal.Decimal
	WorkedDays           int
	TotalDays            int
	PeriodStart          calendar.Date
	PeriodEnd            calendar.Date
	VacationDaysDeducted int
}

// Request describes a schedule to generate.
type Request struct {
	MonthlySalary int64
	PaymentDays   []int
	Count         int
	Vacations     []calendar.Range
}

func (r Request) validate() error {
	if r.MonthlySalary <= 0 {
		return &InputError{Field: "monthly_salary", Reason: "must be positive"}
	}
	if r.MonthlySalary > MaxSalary {
		return &InputError{Field: "monthly_salary", Reason: fmt.Sprintf("exceeds %d", MaxSalary)}
	}
	if r.Count < 1 || r.Count > MaxCount {
		return &InputError{Field: "count", Reason: fmt.Sprintf("must be within 1..%d", MaxCount)}
	}
	return nil
}

// Generator produces salary schedules.
type Generator struct {
	Days     WorkingDays
	Resolver *Resolver
	Periods  *PeriodCalculator

	// Now is the clock; Location decides which calendar day "today" is.
	Now      func() time.Time
	Location *time.Location
	Logger   *zap.Logger
}

// NewGenerator wires a generator around a shared working-day source.
func NewGenerator(days WorkingDays, loc *time.Location, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		Days:     days,
		Resolver: &Resolver{Days: days},
		Periods:  &PeriodCalculator{Days: days},
		Now:      time.Now,
		Location: loc,
		Logger:   logger,
	}
}

// Generate returns the next req.Count payments strictly after today, in
// strictly ascending date order. A nominal day whose paid date does not fall
// after the previous payment is dropped.
func (g *Generator) Generate(ctx context.Context, req Request) ([]SalaryEvent, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	paymentDays, err := NewPaymentDays(req.PaymentDays)
	if err != nil {
		return nil, err
	}
	vacations := calendar.Normalize(req.Vacations)
	today := calendar.Today(g.Now(), g.Location)

	months, err := candidateMonths(calendar.StartOfMonth(today.Year(), today.Month()), 2*req.Count)
	if err != nil {
		return nil, err
	}

	// Every per-day lookup below must be a cache hit.
	last := months[len(months)-1]
	g.Days.LoadRange(ctx, months[0].AddMonths(-1), calendar.EndOfMonth(last.Year(), last.Month()))

	events := make([]SalaryEvent, 0, req.Count)
	latest := today
	for _, m := range months {
		for _, day := range paymentDays.ForMonth(m.Month()) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			paid := g.Resolver.Resolve(ctx, m.Year(), m.Month(), day)
			if !paid.After(latest) {
				if paid.After(today) {
					// Rolled back onto an earlier payment; that payment stands.
					g.Logger.Debug("payment day collides with earlier payment",
						zap.String("date", paid.Key()), zap.Int("nominal_day", day))
				}
				continue
			}
			latest = paid
			events = append(events, g.event(ctx, m, day, paid, req.MonthlySalary, vacations))
			if len(events) == req.Count {
				return events, nil
			}
		}
	}

	if len(events) == 0 {
		return nil, ErrNoFutureEvents
	}
	return events, nil
}

func (g *Generator) event(ctx context.Context, month calendar.Date, day int, paid calendar.Date, salary int64, vacations calendar.Vacations) SalaryEvent {
	accrual := g.Periods.PeriodFor(ctx, month.Year(), month.Month(), day)

	worked := g.Days.CountWorking(ctx, accrual.Period, vacations)
	scheduled := g.Days.CountWorking(ctx, accrual.Period, nil)
	rate := DailyRate(salary, accrual.TotalWorkingDays)

	ev := SalaryEvent{
		Date:                 paid,
		NominalDay:           day,
		Rule:                 accrual.Rule,
		Amount:               Prorate(rate, worked),
		DailyRate:            rate,
		WorkedDays:           worked,
		TotalDays:            accrual.TotalWorkingDays,
		PeriodStart:          accrual.Period.Start,
		PeriodEnd:            accrual.Period.End,
		VacationDaysDeducted: scheduled - worked,
	}
	g.Logger.Debug("salary event",
		zap.Stringer("date", paid),
		zap.Int("nominal_day", day),
		zap.Stringer("rule", accrual.Rule),
		zap.Stringer("period", accrual.Period),
		zap.Int("worked", worked),
		zap.Int("total", accrual.TotalWorkingDays),
		zap.Int64("amount", ev.Amount))
	return ev
}

// candidateMonths enumerates n consecutive months starting at first.
func candidateMonths(first calendar.Date, n int) ([]calendar.Date, error) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.MONTHLY,
		Dtstart: first.Time,
		Count:   n,
	})
	if err != nil {
		return nil, fmt.Errorf("building month recurrence: %w", err)
	}

	seen := make(map[string]bool, n)
	months := make([]calendar.Date, 0, n)
	for _, t := range rule.All() {
		m := calendar.FromTime(t)
		key := calendar.MonthKey(m.Year(), m.Month())
		if seen[key] {
			continue
		}
		seen[key] = true
		months = append(months, m)
	}
	if len(months) == 0 {
		return nil, fmt.Errorf("no candidate months from %s", first)
	}
	return months, nil
}

// Total sums event amounts.
func Total(events []SalaryEvent) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		total = total.Add(decimal.NewFromInt(e.Amount))
	}
	return total
}
