/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  payroll and calendar types from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Schedule:
    ScheduleRequest, ScheduleResponse, SalaryEventDTO

  Vacations:
    VacationDTO, ParseVacationsRequest, VacationsResponse

  Calendar:
    CalendarMonthDTO, CalendarDayDTO

VALIDATION:
  Request types carry go-playground/validator tags, checked in decodeAndValidate.
  Dates travel as ISO "YYYY-MM-DD" strings.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/payday-engine/calendar"
	"github.com/warp/payday-engine/payroll"
	"github.com/warp/payday-engine/vacation"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// VacationDTO is an inclusive vacation range.
type VacationDTO struct {
	Start   string `json:"start" validate:"required,datetime=2006-01-02"`
	End     string `json:"end" validate:"required,datetime=2006-01-02"`
	Display string `json:"display,omitempty" validate:"-"`
}

// ScheduleRequest is the request to generate a salary schedule.
type ScheduleRequest struct {
	MonthlySalary int64         `json:"monthly_salary" validate:"required,gt=0,lte=5000000"`
	PaymentDays   []int         `json:"payment_days,omitempty" validate:"omitempty,max=31,dive,min=1,max=31"`
	Count         int           `json:"count,omitempty" validate:"omitempty,min=1,max=60"`
	Vacations     []VacationDTO `json:"vacations,omitempty" validate:"omitempty,max=1000,dive"`
	VacationsText string        `json:"vacations_text,omitempty" validate:"omitempty,max=65536"`
}

// SalaryEventDTO represents one computed payment.
type SalaryEventDTO struct {
	Date                 string `json:"date"`
	NominalDay           int    `json:"nominal_day"`
	Rule                 string `json:"rule"`
	Amount               int64  `json:"amount"`
	DailyRate            string `json:"daily_rate"`
	WorkedDays           int    `json:"worked_days"`
	TotalDays            int    `json:"total_days"`
	PeriodStart          string `json:"period_start"`
	PeriodEnd            string `json:"period_end"`
	VacationDaysDeducted int    `json:"vacation_days_deducted"`
}

// ScheduleResponse wraps a generated schedule.
type ScheduleResponse struct {
	ScheduleID  string           `json:"schedule_id"`
	GeneratedAt string           `json:"generated_at"`
	Events      []SalaryEventDTO `json:"events"`
	TotalAmount string           `json:"total_amount"`
	Vacations   []VacationDTO    `json:"vacations"`
}

// ParseVacationsRequest is free text with one vacation entry per line.
type ParseVacationsRequest struct {
	Text string `json:"text" validate:"required,max=65536"`
}

// VacationsResponse lists parsed ranges.
type VacationsResponse struct {
	Ranges []VacationDTO `json:"ranges"`
	Count  int           `json:"count"`
}

// CalendarDayDTO is one day of the working-day calendar.
type CalendarDayDTO struct {
	Date    string `json:"date"`
	Working bool   `json:"working"`
	Source  string `json:"source"`
}

// CalendarMonthDTO is a month of the working-day calendar.
type CalendarMonthDTO struct {
	Month       string           `json:"month"`
	WorkingDays int              `json:"working_days"`
	Days        []CalendarDayDTO `json:"days"`
}

// HealthDTO is the liveness response.
type HealthDTO struct {
	Status     string `json:"status"`
	CachedDays int    `json:"cached_days"`
	StoredDays *int   `json:"stored_days,omitempty"`
	NextWarm   string `json:"next_warm,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Msg   string `json:"message"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEventDTO(e payroll.SalaryEvent) SalaryEventDTO {
	return SalaryEventDTO{
		Date:                 e.Date.Key(),
		NominalDay:           e.NominalDay,
		Rule:                 e.Rule.String(),
		Amount:               e.Amount,
		DailyRate:            e.DailyRate.StringFixed(2),
		WorkedDays:           e.WorkedDays,
		TotalDays:            e.TotalDays,
		PeriodStart:          e.PeriodStart.Key(),
		PeriodEnd:            e.PeriodEnd.Key(),
		VacationDaysDeducted: e.VacationDaysDeducted,
	}
}

func toVacationDTOs(ranges []calendar.Range) []VacationDTO {
	dtos := make([]VacationDTO, len(ranges))
	for i, r := range ranges {
		dtos[i] = VacationDTO{
			Start:   r.Start.Key(),
			End:     r.End.Key(),
			Display: vacation.FormatRange(r),
		}
	}
	return dtos
}

func fromVacationDTO(v VacationDTO) (calendar.Range, error) {
	start, err := calendar.ParseKey(v.Start)
	if err != nil {
		return calendar.Range{}, err
	}
	end, err := calendar.ParseKey(v.End)
	if err != nil {
		return calendar.Range{}, err
	}
	return calendar.NewRange(start, end), nil
}
