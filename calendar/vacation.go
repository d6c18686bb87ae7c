package calendar

// =============================================================================
// VACATION CALENDAR
// =============================================================================

// Range is an inclusive vacation span. A single day has Start == End.
type Range struct {
	Start Date
	End   Date
}

// NewRange builds a Range, swapping the endpoints if given in reverse.
func NewRange(a, b Date) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Contains reports whether d lies within [Start, End].
func (r Range) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Period converts the range to a Period.
func (r Range) Period() Period { return Period{Start: r.Start, End: r.End} }

// Vacations is a set of vacation ranges.
type Vacations []Range

// Normalize re-truncates every endpoint to its calendar day and restores
// the Start <= End invariant.
func Normalize(ranges []Range) Vacations {
	if len(ranges) == 0 {
		return nil
	}
	out := make(Vacations, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, NewRange(FromTime(r.Start.Time), FromTime(r.End.Time)))
	}
	return out
}

// Contains reports whether d falls inside any range.
func (v Vacations) Contains(d Date) bool {
	for _, r := range v {
		if r.Contains(d) {
			return true
		}
	}
	return false
}

// IsVacationDay reports whether d falls inside any of ranges. An empty or
// nil set never matches.
func IsVacationDay(d Date, ranges []Range) bool {
	return Vacations(ranges).Contains(d)
}
