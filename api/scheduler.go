/*
scheduler.go - Background calendar warmer

PURPOSE:
  Periodically prefetches the months schedule requests are about to need,
  so the first request after startup (or after a month rolls over) does
  not pay for provider round trips.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each pass loads [current month - 1, current month + Months]
  - Months already fully cached cost nothing; failures degrade to the
    heuristic inside the cache and are never surfaced here

USAGE:
  warmer := NewCalendarWarmer(cache, loc, logger)
  warmer.Start()
  // ... later
  warmer.Stop()

SEE ALSO:
  - calendar/cache.go: LoadRange
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/payday-engine/calendar"
)

// RangeLoader is the part of calendar.Cache the warmer drives.
type RangeLoader interface {
	LoadRange(ctx context.Context, from, to calendar.Date)
}

// CalendarWarmer keeps upcoming months in the working-day cache.
type CalendarWarmer struct {
	Cache    RangeLoader
	Interval time.Duration
	Months   int
	Location *time.Location
	Logger   *zap.Logger
	Enabled  bool
	Now      func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	// runMu guards lastRun; Stop holds mu while the loop drains.
	runMu   sync.Mutex
	lastRun time.Time
}

// NewCalendarWarmer creates a warmer with a 6h interval covering 12 months.
func NewCalendarWarmer(cache RangeLoader, loc *time.Location, logger *zap.Logger) *CalendarWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarWarmer{
		Cache:    cache,
		Interval: 6 * time.Hour,
		Months:   12,
		Location: loc,
		Logger:   logger,
		Enabled:  true,
		Now:      time.Now,
	}
}

// Start begins the warmer.
func (cw *CalendarWarmer) Start() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.Enabled || cw.Interval <= 0 {
		cw.Logger.Info("calendar warmer disabled")
		return
	}
	if cw.ticker != nil {
		return
	}

	cw.ticker = time.NewTicker(cw.Interval)
	cw.stop = make(chan struct{})
	cw.wg.Add(1)

	go cw.run()

	cw.Logger.Info("calendar warmer started",
		zap.Duration("interval", cw.Interval), zap.Int("months", cw.Months))
}

// Stop stops the warmer and waits for an in-flight pass to finish.
func (cw *CalendarWarmer) Stop() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.ticker != nil {
		cw.ticker.Stop()
		close(cw.stop)
		cw.wg.Wait()
		cw.ticker = nil
		cw.Logger.Info("calendar warmer stopped")
	}
}

func (cw *CalendarWarmer) run() {
	defer cw.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-cw.stop
		cancel()
	}()

	// Run immediately on start
	cw.warm(ctx)

	for {
		select {
		case <-cw.ticker.C:
			cw.warm(ctx)
		case <-cw.stop:
			return
		}
	}
}

// RunNow performs one pass synchronously.
func (cw *CalendarWarmer) RunNow(ctx context.Context) {
	cw.warm(ctx)
}

// Window returns the span a pass loads.
func (cw *CalendarWarmer) Window() calendar.Period {
	today := calendar.Today(cw.Now(), cw.Location)
	first := calendar.StartOfMonth(today.Year(), today.Month())
	from := first.AddMonths(-1)
	last := first.AddMonths(cw.Months)
	return calendar.Period{Start: from, End: calendar.EndOfMonth(last.Year(), last.Month())}
}

// NextRunTime returns when the next pass is due.
func (cw *CalendarWarmer) NextRunTime() time.Time {
	cw.runMu.Lock()
	defer cw.runMu.Unlock()
	if cw.lastRun.IsZero() {
		return cw.Now()
	}
	return cw.lastRun.Add(cw.Interval)
}

func (cw *CalendarWarmer) warm(ctx context.Context) {
	window := cw.Window()
	started := time.Now()

	cw.Cache.LoadRange(ctx, window.Start, window.End)

	cw.runMu.Lock()
	cw.lastRun = cw.Now()
	cw.runMu.Unlock()
	warmRuns.Inc()

	cw.Logger.Info("calendar warmed",
		zap.Stringer("window", window), zap.Duration("took", time.Since(started)))
}
