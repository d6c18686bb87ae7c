/*
store.go - Boundaries of the working-day cache

PURPOSE:
  Defines the two collaborators the Cache depends on:

  Provider:  the remote day-type service (one call per month, or per day).
  DayStore:  optional persistence for provider answers so they survive a
             restart. Only provider-sourced records are ever saved.

IMPLEMENTATIONS:
  - provider/isdayoff: HTTP Provider backed by isdayoff.ru
  - calendar/store/memory.go: in-memory DayStore (tests, storage.driver=memory)
  - store/sqlite: SQLite DayStore

SEE ALSO:
  - cache.go: consumer of both interfaces
*/
package calendar

import (
	"context"
	"time"
)

// Provider supplies official day-type data. Implementations may fail; the
// Cache absorbs every error.
type Provider interface {
	// FetchMonth returns one flag per day of the month, true = working.
	FetchMonth(ctx context.Context, year int, month time.Month) ([]bool, error)

	// FetchDay reports whether a single day is working.
	FetchDay(ctx context.Context, d Date) (bool, error)
}

// Source records where a cached fact came from.
type Source string

const (
	SourceProvider  Source = "provider"
	SourceStore     Source = "store"
	SourceHeuristic Source = "heuristic"
)

// DayRecord is a cached working-day fact.
type DayRecord struct {
	Date    Date
	Working bool
	Source  Source
}

// DayStore persists provider facts between runs.
type DayStore interface {
	// SaveDays upserts records. Saving the same date twice is not an error.
	SaveDays(ctx context.Context, records []DayRecord) error

	// LoadMonth returns whatever records exist for the month, in day order.
	LoadMonth(ctx context.Context, year int, month time.Month) ([]DayRecord, error)
}
