package payroll

import "github.com/shopspring/decimal"

// MaxSalary is the ceiling for a monthly salary and for every computed amount.
const MaxSalary int64 = 5_000_000

var maxSalary = decimal.NewFromInt(MaxSalary)

// DailyRate divides the monthly salary by the working days of the
// reference month. A month without working days yields zero.
func DailyRate(monthlySalary int64, totalWorkingDays int) decimal.Decimal {
	if totalWorkingDays <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(monthlySalary).Div(decimal.NewFromInt(int64(totalWorkingDays)))
}

// Prorate returns round(rate * workedDays), clamped to [0, MaxSalary].
func Prorate(rate decimal.Decimal, workedDays int) int64 {
	amount := rate.Mul(decimal.NewFromInt(int64(workedDays))).Round(0)
	if amount.GreaterThan(maxSalary) {
		return MaxSalary
	}
	if amount.IsNegative() {
		return 0
	}
	return amount.IntPart()
}
