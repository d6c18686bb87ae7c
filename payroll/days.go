package payroll

import (
	"fmt"
	"slices"
	"time"
)

// PaymentDays is an ascending set of nominal days-of-month.
type PaymentDays []int

const (
	// DecemberDay replaces the end-of-month payment in December.
	DecemberDay = 26

	endOfMonthDay = 29
)

// DefaultPaymentDays pays an advance on the 29th and settles on the 14th.
var DefaultPaymentDays = PaymentDays{SettlementDay, endOfMonthDay}

// NewPaymentDays validates, sorts and de-duplicates days. An empty input
// selects DefaultPaymentDays.
func NewPaymentDays(days []int) (PaymentDays, error) {
	if len(days) == 0 {
		return slices.Clone(DefaultPaymentDays), nil
	}
	out := make(PaymentDays, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 31 {
			return nil, &InputError{Field: "payment_days", Reason: fmt.Sprintf("day %d outside 1..31", d)}
		}
		out = append(out, d)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ForMonth returns the days to pay in month. December pays on the 26th
// instead of the 29th.
func (p PaymentDays) ForMonth(month time.Month) []int {
	days := slices.Clone([]int(p))
	if month != time.December {
		return days
	}
	for i, d := range days {
		if d == endOfMonthDay {
			days[i] = DecemberDay
		}
	}
	slices.Sort(days)
	return slices.Compact(days)
}
