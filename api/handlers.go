/*
handlers.go - HTTP API handlers for the payday engine

PURPOSE:
  Exposes schedule generation, vacation parsing and the working-day
  calendar via REST API. Handles HTTP request/response and JSON
  serialization, and delegates to the payroll, vacation and calendar
  packages.

ENDPOINTS:
  Schedule:
    POST   /api/schedule                 Generate the next N salary events

  Vacations:
    POST   /api/vacations/parse          Parse free text into ranges
    POST   /api/vacations/upload         Parse an uploaded .csv/.txt file

  Calendar:
    GET    /api/calendar/{year}/{month}  Day-by-day working flags

  Ops:
    GET    /healthz                      Liveness, cache/store sizes, next warm
    GET    /metrics                      Prometheus metrics

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator tags on DTOs)
  3. Call domain logic
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 413: Upload too large
  - 415: Upload type not accepted
  - 422: Input understood but nothing usable came out of it
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/payday-engine/calendar"
	"github.com/warp/payday-engine/payroll"
	"github.com/warp/payday-engine/vacation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Cache     *calendar.Cache
	Generator *payroll.Generator
	Parser    *vacation.Parser
	Logger    *zap.Logger

	// Defaults applied when a schedule request omits them.
	PaymentDays  []int
	DefaultCount int

	// Optional; reported by Health when set.
	Stats  DayCounter
	Warmer *CalendarWarmer

	validate *validator.Validate
}

// DayCounter reports how many days a persistent store holds.
type DayCounter interface {
	Count(ctx context.Context) (int, error)
}

// NewHandler creates a handler around a shared cache.
func NewHandler(cache *calendar.Cache, gen *payroll.Generator, parser *vacation.Parser, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Cache:        cache,
		Generator:    gen,
		Parser:       parser,
		Logger:       logger,
		PaymentDays:  payroll.DefaultPaymentDays,
		DefaultCount: 6,
		validate:     newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GenerateSchedule returns the next salary events for a monthly salary.
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ranges := make([]calendar.Range, 0, len(req.Vacations))
	for _, v := range req.Vacations {
		rng, err := fromVacationDTO(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid vacation date", err)
			return
		}
		if err := h.Parser.Validate(rng); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid vacation range", err)
			return
		}
		ranges = append(ranges, rng)
	}
	if strings.TrimSpace(req.VacationsText) != "" {
		parsed, err := h.Parser.ParseText(req.VacationsText)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Failed to parse vacations", err)
			return
		}
		ranges = append(ranges, parsed...)
	}

	days := req.PaymentDays
	if len(days) == 0 {
		days = h.PaymentDays
	}
	count := req.Count
	if count == 0 {
		count = h.DefaultCount
	}

	events, err := h.Generator.Generate(r.Context(), payroll.Request{
		MonthlySalary: req.MonthlySalary,
		PaymentDays:   days,
		Count:         count,
		Vacations:     ranges,
	})
	if err != nil {
		scheduleRequests.WithLabelValues(outcomeFor(err)).Inc()
		h.writeScheduleError(w, err)
		return
	}
	scheduleRequests.WithLabelValues("ok").Inc()

	dtos := make([]SalaryEventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		ScheduleID:  uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Events:      dtos,
		TotalAmount: payroll.Total(events).String(),
		Vacations:   toVacationDTOs(calendar.Normalize(ranges)),
	})
}

func (h *Handler) writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payroll.ErrNoFutureEvents):
		writeError(w, http.StatusUnprocessableEntity, "No future salary events", err)
	case errors.Is(err, payroll.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid schedule request", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err)
	default:
		h.Logger.Error("schedule generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate schedule", err)
	}
}

func outcomeFor(err error) string {
	if payroll.IsClientError(err) {
		return "rejected"
	}
	return "error"
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// ParseVacations parses typed text into vacation ranges.
func (h *Handler) ParseVacations(w http.ResponseWriter, r *http.Request) {
	var req ParseVacationsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ranges, err := h.Parser.ParseText(req.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to parse vacations", err)
		return
	}
	writeJSON(w, http.StatusOK, VacationsResponse{Ranges: toVacationDTOs(ranges), Count: len(ranges)})
}

// UploadVacations parses a multipart "file" field.
func (h *Handler) UploadVacations(w http.ResponseWriter, r *http.Request) {
	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, vacation.MaxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(vacation.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large", vacation.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field", err)
		return
	}
	defer file.Close()

	if err := vacation.CheckUpload(header.Filename, header.Size); err != nil {
		switch {
		case errors.Is(err, vacation.ErrFileTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "File too large", err)
		default:
			writeError(w, http.StatusUnsupportedMediaType, "Unsupported file type", err)
		}
		return
	}

	contents, err := io.ReadAll(io.LimitReader(file, vacation.MaxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file", err)
		return
	}

	ranges, err := h.Parser.ParseFile(contents, vacation.IsCSV(header.Filename))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to parse vacations", err)
		return
	}
	h.Logger.Info("vacation file parsed",
		zap.String("file", header.Filename), zap.Int("ranges", len(ranges)))
	writeJSON(w, http.StatusOK, VacationsResponse{Ranges: toVacationDTOs(ranges), Count: len(ranges)})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendarMonth returns working-day flags for one month.
func (h *Handler) GetCalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 2100 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	p := calendar.MonthPeriod(year, time.Month(month))
	h.Cache.LoadRange(r.Context(), p.Start, p.End)

	dto := CalendarMonthDTO{Month: calendar.MonthKey(year, time.Month(month))}
	for _, d := range p.Days() {
		rec, ok := h.Cache.Lookup(d)
		if !ok {
			h.Cache.IsWorking(r.Context(), d)
			rec, _ = h.Cache.Lookup(d)
		}
		if rec.Working {
			dto.WorkingDays++
		}
		dto.Days = append(dto.Days, CalendarDayDTO{
			Date:    d.Key(),
			Working: rec.Working,
			Source:  string(rec.Source),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// Health reports liveness, cache and store sizes, and the next warm pass.
// A failing day store turns the response into 503 "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dto := HealthDTO{Status: "ok", CachedDays: h.Cache.Len()}
	status := http.StatusOK

	if h.Stats != nil {
		n, err := h.Stats.Count(r.Context())
		if err != nil {
			h.Logger.Warn("day store count failed", zap.Error(err))
			dto.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			dto.StoredDays = &n
		}
	}
	if h.Warmer != nil && h.Warmer.Enabled && h.Warmer.Interval > 0 {
		dto.NextWarm = h.Warmer.NextRunTime().Format(time.RFC3339)
	}
	writeJSON(w, status, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeAndValidate reads a JSON body into dst. It writes the error
// response itself and reports whether the handler should continue.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "Invalid request", err)
			return false
		}
		fields := make([]FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = FieldError{
				Field: fe.Namespace(),
				Tag:   fe.Tag(),
				Msg:   fieldMessage(fe),
			}
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Code:    "validation",
			Details: fields,
		})
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag())
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
