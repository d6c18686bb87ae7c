/*
cache.go - Working-day cache

PURPOSE:
  Memoizes "is this date a working day?" for the whole process run. One
  Cache is constructed at startup and passed by reference to every
  component that needs it; it is never torn down and never evicts.

RESOLUTION ORDER (per date):
  1. In-memory record            (hit)
  2. Provider single-day lookup  (stored with SourceProvider)
  3. WeekendHeuristic            (stored with SourceHeuristic, so a provider
                                  outage is not retried for that date)

BATCH LOADING:
  LoadRange walks the span month by month. A month that is already fully
  cached is skipped. Otherwise the DayStore (if any) is tried, then one
  FetchMonth call fans out into per-day records. Callers that are about to
  look up many days MUST LoadRange first so the per-day path stays a cache
  hit: round trips are O(months), not O(days).

FAILURE SEMANTICS:
  Provider errors are never returned. They are logged, counted, and the
  affected days fall back to the heuristic. A failed month load fills the
  whole month with heuristic records. When the caller's context is done the
  heuristic answer is returned but nothing is cached, so the next caller
  asks the provider again.

SEE ALSO:
  - store.go: Provider and DayStore interfaces
  - heuristic.go: WeekendHeuristic
*/
package calendar

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every provider call.
const DefaultTimeout = 5 * time.Second

// Cache is the process-wide working-day cache.
type Cache struct {
	provider Provider
	store    DayStore
	timeout  time.Duration
	logger   *zap.Logger

	mu   sync.RWMutex
	days map[string]DayRecord
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore adds a persistent second-level store.
func WithStore(s DayStore) Option { return func(c *Cache) { c.store = s } }

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for provider diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache creates a cache in front of p. A nil provider makes every miss
// resolve through the heuristic.
func NewCache(p Provider, opts ...Option) *Cache {
	c := &Cache{
		provider: p,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
		days:     make(map[string]DayRecord),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Lookup returns the cached record for d without touching the provider.
func (c *Cache) Lookup(d Date) (DayRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.days[d.Key()]
	return r, ok
}

// Len returns the number of cached days.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.days)
}

// IsWorking reports whether d is a working day. It never fails.
func (c *Cache) IsWorking(ctx context.Context, d Date) bool {
	if r, ok := c.Lookup(d); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return r.Working
	}
	cacheLookups.WithLabelValues("miss").Inc()

	if working, ok := c.lookupProvider(ctx, d); ok {
		rec := DayRecord{Date: d, Working: working, Source: SourceProvider}
		c.put(rec)
		c.persist(ctx, []DayRecord{rec})
		return working
	}

	working := WeekendHeuristic(d)
	if ctx.Err() != nil {
		// The caller went away; the provider was not at fault.
		return working
	}
	heuristicFallbacks.Inc()
	c.put(DayRecord{Date: d, Working: working, Source: SourceHeuristic})
	return working
}

// lookupProvider asks the provider about a single day. ok is false when the
// provider is absent or failed.
func (c *Cache) lookupProvider(ctx context.Context, d Date) (working bool, ok bool) {
	if c.provider == nil {
		return false, false
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	working, err := c.provider.FetchDay(ctx, d)
	if err != nil {
		c.logger.Warn("provider day lookup failed, using weekend heuristic",
			zap.String("date", d.Key()), zap.Error(err))
		return false, false
	}
	return working, true
}

// CountWorking counts working days in p. Days inside vacations count as
// non-working regardless of the calendar.
func (c *Cache) CountWorking(ctx context.Context, p Period, vacations Vacations) int {
	n := 0
	for _, d := range p.Days() {
		if vacations.Contains(d) {
			continue
		}
		if c.IsWorking(ctx, d) {
			n++
		}
	}
	return n
}

// =============================================================================
// BATCH LOADING
// =============================================================================

// LoadRange prefetches every month touched by [from, to]. It is best-effort:
// failures degrade to the heuristic and are never returned.
func (c *Cache) LoadRange(ctx context.Context, from, to Date) {
	if to.Before(from) {
		from, to = to, from
	}
	for _, m := range (Period{Start: from, End: to}).Months() {
		if ctx.Err() != nil {
			return
		}
		c.loadMonth(ctx, m.Year(), m.Month())
	}
}

func (c *Cache) loadMonth(ctx context.Context, year int, month time.Month) {
	if c.hasMonth(year, month) {
		return
	}

	if c.store != nil {
		records, err := c.store.LoadMonth(ctx, year, month)
		if err != nil {
			c.logger.Warn("day store load failed",
				zap.String("month", MonthKey(year, month)), zap.Error(err))
		} else if len(records) == DaysIn(year, month) {
			for _, r := range records {
				r.Source = SourceStore
				c.put(r)
			}
			monthLoads.WithLabelValues(string(SourceStore)).Inc()
			return
		}
	}

	days, err := c.fetchMonth(ctx, year, month)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("month load abandoned",
				zap.String("month", MonthKey(year, month)), zap.Error(ctx.Err()))
			return
		}
		c.logger.Warn("provider month lookup failed, using weekend heuristic",
			zap.String("month", MonthKey(year, month)), zap.Error(err))
		c.fillHeuristic(year, month)
		monthLoads.WithLabelValues(string(SourceHeuristic)).Inc()
		return
	}

	records := make([]DayRecord, len(days))
	for i, working := range days {
		records[i] = DayRecord{Date: NewDate(year, month, i+1), Working: working, Source: SourceProvider}
		c.put(records[i])
	}
	c.persist(ctx, records)
	monthLoads.WithLabelValues(string(SourceProvider)).Inc()
	c.logger.Debug("month cached", zap.String("month", MonthKey(year, month)), zap.Int("days", len(days)))
}

func (c *Cache) fetchMonth(ctx context.Context, year int, month time.Month) ([]bool, error) {
	if c.provider == nil {
		return nil, ErrProvider
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	days, err := c.provider.FetchMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if err := ValidateMonth(year, month, days); err != nil {
		return nil, err
	}
	return days, nil
}

// fillHeuristic classifies every uncached day of the month by weekday.
func (c *Cache) fillHeuristic(year int, month time.Month) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range MonthPeriod(year, month).Days() {
		if _, ok := c.days[d.Key()]; ok {
			continue
		}
		c.days[d.Key()] = DayRecord{Date: d, Working: WeekendHeuristic(d), Source: SourceHeuristic}
	}
}

func (c *Cache) hasMonth(year int, month time.Month) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range MonthPeriod(year, month).Days() {
		if _, ok := c.days[d.Key()]; !ok {
			return false
		}
	}
	return true
}

func (c *Cache) put(r DayRecord) {
	c.mu.Lock()
	c.days[r.Date.Key()] = r
	c.mu.Unlock()
}

// persist saves provider facts. Store failures only cost a future refetch.
func (c *Cache) persist(ctx context.Context, records []DayRecord) {
	if c.store == nil || len(records) == 0 {
		return
	}
	if err := c.store.SaveDays(ctx, records); err != nil {
		c.logger.Warn("day store save failed", zap.Int("records", len(records)), zap.Error(err))
	}
}
