// Package memory stores habits and logs in process memory. It backs local
// development when no Postgres URL is configured, and unit tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/habits/internal/domain"
)

// Repository implements domain.HabitRepository and domain.LogRepository.
type Repository struct {
	mu     sync.RWMutex
	habits map[string]domain.Habit
	logs   map[string]map[string]domain.DailyLog // habit id -> wire date -> record
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		habits: make(map[string]domain.Habit),
		logs:   make(map[string]map[string]domain.DailyLog),
	}
}

// Create implements domain.HabitRepository.
func (r *Repository) Create(ctx context.Context, habit domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.habits[habit.ID] = habit
	return nil
}

// Get returns the habit when it exists and belongs to the owner, nil otherwise.
func (r *Repository) Get(ctx context.Context, ownerID, habitID string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.habits[habitID]
	if !ok || habit.OwnerID != ownerID {
		return nil, nil
	}
	return &habit, nil
}

// List returns the owner's habits ordered by creation time.
func (r *Repository) List(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Habit, 0)
	for _, habit := range r.habits {
		if habit.OwnerID != ownerID {
			continue
		}
		if activeOnly && !habit.IsActive {
			continue
		}
		out = append(out, habit)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Deactivate flips the active flag off.
func (r *Repository) Deactivate(ctx context.Context, ownerID, habitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.habits[habitID]
	if !ok || habit.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	habit.IsActive = false
	habit.UpdatedAt = time.Now().UTC()
	r.habits[habitID] = habit
	return nil
}

// Delete removes a log-free habit.
func (r *Repository) Delete(ctx context.Context, ownerID, habitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.habits[habitID]
	if !ok || habit.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	if len(r.logs[habitID]) > 0 {
		return domain.ErrConflict
	}
	delete(r.habits, habitID)
	delete(r.logs, habitID)
	return nil
}

// Upsert implements domain.LogRepository. The day's prior record, if any, is
// replaced wholesale; its creation timestamp survives.
func (r *Repository) Upsert(ctx context.Context, record domain.DailyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.FormatDate(record.Date)
	days, ok := r.logs[record.HabitID]
	if !ok {
		days = make(map[string]domain.DailyLog)
		r.logs[record.HabitID] = days
	}
	if existing, ok := days[key]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	days[key] = record
	return nil
}

// ListForDate returns all of the owner's records for one day.
func (r *Repository) ListForDate(ctx context.Context, ownerID string, date time.Time) ([]domain.DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.FormatDate(date)
	out := make([]domain.DailyLog, 0)
	for _, days := range r.logs {
		record, ok := days[key]
		if !ok || record.OwnerID != ownerID {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HabitID < out[j].HabitID })
	return out, nil
}

// History returns one habit's records in ascending date order.
func (r *Repository) History(ctx context.Context, ownerID, habitID string, from, to time.Time) ([]domain.DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DailyLog, 0)
	for _, record := range r.logs[habitID] {
		if record.OwnerID != ownerID {
			continue
		}
		if !from.IsZero() && record.Date.Before(from) {
			continue
		}
		if !to.IsZero() && record.Date.After(to) {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// HistoryPage returns one habit's records in descending date order.
func (r *Repository) HistoryPage(ctx context.Context, ownerID, habitID string, cursor *domain.Cursor, limit int) ([]domain.DailyLog, *domain.Cursor, error) {
	records, err := r.History(ctx, ownerID, habitID, time.Time{}, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })

	out := make([]domain.DailyLog, 0, limit)
	var next *domain.Cursor
	for _, record := range records {
		if cursor != nil && !record.Date.Before(cursor.Date) {
			continue
		}
		// A full page only gets a cursor when an older record actually exists.
		if limit > 0 && len(out) == limit {
			next = &domain.Cursor{Date: out[len(out)-1].Date}
			break
		}
		out = append(out, record)
	}
	return out, next, nil
}

// CompletedCountsByDate counts completed records per day across all of the
// owner's habits, deactivated ones included.
func (r *Repository) CompletedCountsByDate(ctx context.Context, ownerID string, from, to time.Time) (map[time.Time]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[time.Time]int)
	for _, days := range r.logs {
		for _, record := range days {
			if record.OwnerID != ownerID || !record.Completed {
				continue
			}
			if record.Date.Before(from) || record.Date.After(to) {
				continue
			}
			counts[record.Date]++
		}
	}
	return counts, nil
}
