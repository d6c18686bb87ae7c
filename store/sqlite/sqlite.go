/*
Package sqlite provides a SQLite-backed calendar.DayStore.

PURPOSE:
  Keeps provider answers across restarts so a warm process does not have
  to refetch months it already knows. Only provider-sourced facts reach
  this store; heuristic guesses are never written.

KEY TABLES:
  working_days: one row per calendar day (upserted, never appended)

INDEXES:
  - idx_working_days_month: LoadMonth (hot path on cache warm-up)

CONCURRENCY:
  Uses sync.RWMutex around the handle and a single open connection, so
  concurrent SaveDays calls serialize instead of hitting SQLITE_BUSY.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payday.db")
  if err != nil {
      return err
  }
  defer store.Close()

  cache := calendar.NewCache(provider, calendar.WithStore(store))

SEE ALSO:
  - calendar/store.go: DayStore interface
  - calendar/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payday-engine/calendar"
)

// Store implements calendar.DayStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ calendar.DayStore = (*Store)(nil)

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS working_days (
		day TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		working INTEGER NOT NULL,
		source TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_working_days_month
		ON working_days(year, month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DAY STORE (calendar.DayStore interface)
// =============================================================================

// SaveDays upserts records in a single transaction.
func (s *Store) SaveDays(ctx context.Context, records []calendar.DayRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO working_days (day, year, month, working, source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Date.Key(),
			r.Date.Year(),
			int(r.Date.Month()),
			boolToInt(r.Working),
			string(r.Source),
			now,
		); err != nil {
			return fmt.Errorf("failed to save day %s: %w", r.Date.Key(), err)
		}
	}

	return sqlTx.Commit()
}

// LoadMonth returns the stored records for the month in day order.
func (s *Store) LoadMonth(ctx context.Context, year int, month time.Month) ([]calendar.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT day, working, source FROM working_days
		WHERE year = ? AND month = ?
		ORDER BY day
	`, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("failed to query month %s: %w", calendar.MonthKey(year, month), err)
	}
	defer rows.Close()

	var records []calendar.DayRecord
	for rows.Next() {
		var (
			key     string
			working int
			source  string
		)
		if err := rows.Scan(&key, &working, &source); err != nil {
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		d, err := calendar.ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("corrupt day key %q: %w", key, err)
		}
		records = append(records, calendar.DayRecord{
			Date:    d,
			Working: working != 0,
			Source:  calendar.Source(source),
		})
	}
	return records, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Count returns the number of stored days.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM working_days`).Scan(&n)
	return n, err
}

// Reset deletes every stored day.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM working_days`)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
