package calendar_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payday-engine/calendar"
	"github.com/warp/payday-engine/calendar/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeProvider answers from a holiday set on top of Mon-Fri and counts calls.
type fakeProvider struct {
	mu         sync.Mutex
	holidays   map[string]bool
	monthErr   error
	dayErr     error
	short      bool
	block      bool
	monthCalls int
	dayCalls   int
}

func newFakeProvider(holidays ...calendar.Date) *fakeProvider {
	p := &fakeProvider{holidays: make(map[string]bool)}
	for _, h := range holidays {
		p.holidays[h.Key()] = true
	}
	return p
}

func (p *fakeProvider) working(d calendar.Date) bool {
	return !d.IsWeekend() && !p.holidays[d.Key()]
}

func (p *fakeProvider) FetchMonth(ctx context.Context, year int, month time.Month) ([]bool, error) {
	p.mu.Lock()
	p.monthCalls++
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.monthErr != nil {
		return nil, p.monthErr
	}
	n := calendar.DaysIn(year, month)
	if p.short {
		n--
	}
	days := make([]bool, n)
	for i := range days {
		days[i] = p.working(calendar.NewDate(year, month, i+1))
	}
	return days, nil
}

func (p *fakeProvider) FetchDay(ctx context.Context, d calendar.Date) (bool, error) {
	p.mu.Lock()
	p.dayCalls++
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	if p.dayErr != nil {
		return false, p.dayErr
	}
	return p.working(d), nil
}

func (p *fakeProvider) calls() (month, day int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.monthCalls, p.dayCalls
}

func date(y int, m time.Month, d int) calendar.Date { return calendar.NewDate(y, m, d) }

// =============================================================================
// BATCH LOADING
// =============================================================================

func TestLoadRange_OneCallPerMonth(t *testing.T) {
	// GIVEN: an empty cache
	// WHEN: a range touching four months is loaded
	// THEN: the provider is asked once per month and never per day
	ctx := context.Background()
	p := newFakeProvider()
	c := calendar.NewCache(p)

	c.LoadRange(ctx, date(2026, time.January, 10), date(2026, time.April, 2))

	months, days := p.calls()
	assert.Equal(t, 4, months)
	assert.Equal(t, 0, days)
	assert.Equal(t, 31+28+31+30, c.Len())
}

func TestLoadRange_Idempotent(t *testing.T) {
	// GIVEN: a range loaded once
	// WHEN: the same range is loaded again
	// THEN: no additional provider calls and identical answers
	ctx := context.Background()
	p := newFakeProvider(date(2026, time.March, 9))
	c := calendar.NewCache(p)

	from, to := date(2026, time.February, 1), date(2026, time.March, 31)
	c.LoadRange(ctx, from, to)
	first := map[string]bool{}
	for _, d := range (calendar.Period{Start: from, End: to}).Days() {
		first[d.Key()] = c.IsWorking(ctx, d)
	}
	monthsBefore, daysBefore := p.calls()

	c.LoadRange(ctx, from, to)
	for _, d := range (calendar.Period{Start: from, End: to}).Days() {
		assert.Equal(t, first[d.Key()], c.IsWorking(ctx, d), d.Key())
	}

	monthsAfter, daysAfter := p.calls()
	assert.Equal(t, monthsBefore, monthsAfter)
	assert.Equal(t, daysBefore, daysAfter)
	assert.Equal(t, 0, daysAfter)
	assert.False(t, first["2026-03-09"])
}

func TestLoadRange_ReversedBounds(t *testing.T) {
	// GIVEN: a range whose end precedes its start
	// WHEN: it is loaded
	// THEN: both months are fetched as if the bounds were swapped
	p := newFakeProvider()
	c := calendar.NewCache(p)

	c.LoadRange(context.Background(), date(2026, time.June, 30), date(2026, time.May, 1))

	months, _ := p.calls()
	assert.Equal(t, 2, months)
}

func TestLoadRange_MonthFailureFallsBackToHeuristic(t *testing.T) {
	// GIVEN: a provider whose month endpoint fails
	// WHEN: the month is loaded
	// THEN: every day is classified by weekday and no per-day retries follow
	ctx := context.Background()
	p := newFakeProvider(date(2026, time.May, 1))
	p.monthErr = errors.New("connection refused")
	c := calendar.NewCache(p)

	c.LoadRange(ctx, date(2026, time.May, 1), date(2026, time.May, 31))

	// May 1 2026 is a Friday: the heuristic cannot know it is a holiday.
	assert.True(t, c.IsWorking(ctx, date(2026, time.May, 1)))
	assert.False(t, c.IsWorking(ctx, date(2026, time.May, 2)))

	r, ok := c.Lookup(date(2026, time.May, 1))
	require.True(t, ok)
	assert.Equal(t, calendar.SourceHeuristic, r.Source)

	months, days := p.calls()
	assert.Equal(t, 1, months)
	assert.Equal(t, 0, days, "heuristic fill must prevent per-day retries")
}

func TestLoadRange_CallerCancellationIsNotCached(t *testing.T) {
	// GIVEN: a provider that hangs until the caller gives up
	// WHEN: a month load is cancelled and the month is loaded again
	// THEN: the second load reaches the provider and keeps the holiday
	holiday := date(2026, time.November, 4)
	p := newFakeProvider(holiday)
	p.block = true
	c := calendar.NewCache(p)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c.LoadRange(ctx, date(2026, time.November, 1), date(2026, time.November, 30))
	assert.Equal(t, 0, c.Len())

	p.block = false
	c.LoadRange(context.Background(), date(2026, time.November, 1), date(2026, time.November, 30))

	assert.False(t, c.IsWorking(context.Background(), holiday))
	r, ok := c.Lookup(holiday)
	require.True(t, ok)
	assert.Equal(t, calendar.SourceProvider, r.Source)
	months, _ := p.calls()
	assert.Equal(t, 2, months)
}

func TestLoadRange_WrongLengthIsRejected(t *testing.T) {
	// GIVEN: a provider returning one day too few
	// WHEN: February is loaded
	// THEN: the vector is rejected and the heuristic fills the month
	ctx := context.Background()
	p := newFakeProvider()
	p.short = true
	c := calendar.NewCache(p)

	c.LoadRange(ctx, date(2026, time.February, 1), date(2026, time.February, 28))

	r, ok := c.Lookup(date(2026, time.February, 2))
	require.True(t, ok)
	assert.Equal(t, calendar.SourceHeuristic, r.Source)
}

func TestLoadRange_UsesStoreBeforeProvider(t *testing.T) {
	// GIVEN: a store populated by an earlier run
	// WHEN: a fresh cache loads the same month
	// THEN: the store answers and the provider is not called
	ctx := context.Background()
	mem := store.NewMemory()

	first := newFakeProvider(date(2026, time.November, 4))
	calendar.NewCache(first, calendar.WithStore(mem)).LoadRange(ctx, date(2026, time.November, 1), date(2026, time.November, 30))
	assert.Equal(t, 1, mem.Saves())

	second := newFakeProvider()
	c := calendar.NewCache(second, calendar.WithStore(mem))
	c.LoadRange(ctx, date(2026, time.November, 1), date(2026, time.November, 30))

	months, _ := second.calls()
	assert.Equal(t, 0, months)
	assert.False(t, c.IsWorking(ctx, date(2026, time.November, 4)))

	r, ok := c.Lookup(date(2026, time.November, 4))
	require.True(t, ok)
	assert.Equal(t, calendar.SourceStore, r.Source)
}

func TestLoadRange_HeuristicNotPersisted(t *testing.T) {
	// GIVEN: a provider that is down
	// WHEN: a month and a single day are resolved
	// THEN: heuristic guesses never reach the store
	ctx := context.Background()
	mem := store.NewMemory()
	p := newFakeProvider()
	p.monthErr = errors.New("down")
	p.dayErr = errors.New("down")
	c := calendar.NewCache(p, calendar.WithStore(mem))

	c.LoadRange(ctx, date(2026, time.July, 1), date(2026, time.July, 31))
	c.IsWorking(ctx, date(2026, time.August, 3))

	assert.Equal(t, 0, mem.Saves())
}

// =============================================================================
// SINGLE-DAY LOOKUPS
// =============================================================================

func TestIsWorking_SingleDayFallback(t *testing.T) {
	// GIVEN: an empty cache and a holiday on Jun 12
	// WHEN: days are asked without a prior LoadRange
	// THEN: each new day costs one FetchDay and repeats are hits
	ctx := context.Background()
	p := newFakeProvider(date(2026, time.June, 12))
	c := calendar.NewCache(p)

	assert.False(t, c.IsWorking(ctx, date(2026, time.June, 12)))
	assert.True(t, c.IsWorking(ctx, date(2026, time.June, 11)))
	assert.False(t, c.IsWorking(ctx, date(2026, time.June, 12)))

	months, days := p.calls()
	assert.Equal(t, 0, months)
	assert.Equal(t, 2, days)
}

func TestIsWorking_ProviderErrorIsCachedHeuristic(t *testing.T) {
	// GIVEN: a provider that always fails
	// WHEN: the same Saturday and Monday are asked twice
	// THEN: weekend heuristic answers and the provider is asked only once per day
	ctx := context.Background()
	p := newFakeProvider()
	p.dayErr = errors.New("503")
	c := calendar.NewCache(p)

	saturday := date(2026, time.October, 24)
	monday := date(2026, time.October, 26)
	for i := 0; i < 2; i++ {
		assert.False(t, c.IsWorking(ctx, saturday))
		assert.True(t, c.IsWorking(ctx, monday))
	}

	_, days := p.calls()
	assert.Equal(t, 2, days)
}

func TestIsWorking_TimeoutFallsBack(t *testing.T) {
	// GIVEN: a provider that never answers
	// WHEN: a Sunday is asked with a short cache timeout
	// THEN: the heuristic answers promptly
	p := newFakeProvider()
	p.block = true
	c := calendar.NewCache(p, calendar.WithTimeout(10*time.Millisecond))

	start := time.Now()
	assert.False(t, c.IsWorking(context.Background(), date(2026, time.October, 25)))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestIsWorking_CallerCancellationIsNotCached(t *testing.T) {
	// GIVEN: a provider that hangs until the caller gives up
	// WHEN: a single-day lookup runs with a cancelled context
	// THEN: the heuristic answers but the next caller still reaches the provider
	p := newFakeProvider(date(2026, time.November, 4))
	p.block = true
	c := calendar.NewCache(p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, c.IsWorking(ctx, date(2026, time.November, 4)), "Wednesday by weekday")
	_, ok := c.Lookup(date(2026, time.November, 4))
	assert.False(t, ok)

	p.block = false
	assert.False(t, c.IsWorking(context.Background(), date(2026, time.November, 4)))
	r, ok := c.Lookup(date(2026, time.November, 4))
	require.True(t, ok)
	assert.Equal(t, calendar.SourceProvider, r.Source)
}

func TestIsWorking_NilProvider(t *testing.T) {
	// GIVEN: a cache without a provider
	// WHEN: days and a month are resolved
	// THEN: the weekend heuristic decides everything
	c := calendar.NewCache(nil)
	ctx := context.Background()

	assert.True(t, c.IsWorking(ctx, date(2026, time.October, 23)))
	assert.False(t, c.IsWorking(ctx, date(2026, time.October, 24)))

	c.LoadRange(ctx, date(2026, time.October, 1), date(2026, time.October, 31))
	assert.Equal(t, 31, c.Len())
}

func TestWeekendHeuristic(t *testing.T) {
	// GIVEN: one week of days
	// WHEN: the heuristic classifies them
	// THEN: only Saturday and Sunday are days off
	tests := []struct {
		day  calendar.Date
		want bool
	}{
		{date(2026, time.October, 19), true},  // Monday
		{date(2026, time.October, 23), true},  // Friday
		{date(2026, time.October, 24), false}, // Saturday
		{date(2026, time.October, 25), false}, // Sunday
	}
	for _, tt := range tests {
		t.Run(tt.day.Key(), func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.WeekendHeuristic(tt.day))
		})
	}
}

// =============================================================================
// COUNTING
// =============================================================================

func TestCountWorking_VacationsAreNonWorking(t *testing.T) {
	// GIVEN: March 2026 with 22 weekdays
	// WHEN: working days are counted with and without a vacation
	// THEN: the vacation week removes five days
	ctx := context.Background()
	c := calendar.NewCache(newFakeProvider())
	march := calendar.MonthPeriod(2026, time.March)
	c.LoadRange(ctx, march.Start, march.End)

	all := c.CountWorking(ctx, march, nil)
	assert.Equal(t, 22, all)

	// Mon Mar 9 - Sun Mar 15: five working days.
	vac := calendar.Vacations{calendar.NewRange(date(2026, time.March, 9), date(2026, time.March, 15))}
	assert.Equal(t, 17, c.CountWorking(ctx, march, vac))
}
