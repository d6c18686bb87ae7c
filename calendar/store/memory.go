// Package store provides DayStore implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payday-engine/calendar"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	months map[key]map[int]calendar.DayRecord
	saves  int
}

type key struct {
	Year  int
	Month time.Month
}

func NewMemory() *Memory {
	return &Memory{months: make(map[key]map[int]calendar.DayRecord)}
}

// SaveDays upserts records.
func (m *Memory) SaveDays(_ context.Context, records []calendar.DayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		k := key{Year: r.Date.Year(), Month: r.Date.Month()}
		days, ok := m.months[k]
		if !ok {
			days = make(map[int]calendar.DayRecord)
			m.months[k] = days
		}
		days[r.Date.Day()] = r
	}
	m.saves++
	return nil
}

// LoadMonth returns the stored records for the month in day order.
func (m *Memory) LoadMonth(_ context.Context, year int, month time.Month) ([]calendar.DayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := m.months[key{Year: year, Month: month}]
	result := make([]calendar.DayRecord, 0, len(days))
	for _, r := range days {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// Count returns the number of stored days.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, days := range m.months {
		n += len(days)
	}
	return n, nil
}

// Saves returns how many SaveDays calls were made.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
