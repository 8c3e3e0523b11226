// Package domain defines the business logic for the habit service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HabitRepository captures persistence operations for habit definitions.
// Every operation scopes by owner; a habit id alone never authorizes access.
type HabitRepository interface {
	Create(ctx context.Context, habit Habit) error
	Get(ctx context.Context, ownerID, habitID string) (*Habit, error)
	List(ctx context.Context, ownerID string, activeOnly bool) ([]Habit, error)
	Deactivate(ctx context.Context, ownerID, habitID string) error
	// Delete removes a log-free habit. It returns ErrConflict when dependent
	// logs exist and ErrNotFound when the habit does not resolve for the owner.
	Delete(ctx context.Context, ownerID, habitID string) error
}

// LogRepository captures persistence operations for daily completion records.
type LogRepository interface {
	// Upsert stores the record for (HabitID, Date), replacing any previous
	// one. A single call is atomic: concurrent writers race to a coherent
	// last-writer-wins state, never a partial record.
	Upsert(ctx context.Context, record DailyLog) error
	ListForDate(ctx context.Context, ownerID string, date time.Time) ([]DailyLog, error)
	// History returns one habit's records ordered by ascending date. A zero
	// bound leaves that side of the range open.
	History(ctx context.Context, ownerID, habitID string, from, to time.Time) ([]DailyLog, error)
	// HistoryPage returns one habit's records ordered by descending date,
	// starting after the cursor.
	HistoryPage(ctx context.Context, ownerID, habitID string, cursor *Cursor, limit int) ([]DailyLog, *Cursor, error)
	// CompletedCountsByDate counts completed records per day across all of
	// the owner's habits within [from, to], active or not.
	CompletedCountsByDate(ctx context.Context, ownerID string, from, to time.Time) (map[time.Time]int, error)
}

// Service orchestrates habit definition and completion logging workflows.
type Service struct {
	habits HabitRepository
	logs   LogRepository
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(habits HabitRepository, logs LogRepository) *Service {
	return &Service{habits: habits, logs: logs, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateHabitInput captures the payload from the API layer.
type CreateHabitInput struct {
	OwnerID     string
	Name        string
	Category    string
	TargetType  TargetType
	TargetValue int
}

// CreateHabit validates the definition and persists it.
func (s *Service) CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, ok := Categories[input.Category]; !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, input.Category)
	}
	if !input.TargetType.Valid() {
		return nil, fmt.Errorf("%w: target type must be count or time", ErrValidation)
	}
	if input.TargetValue < 1 {
		return nil, fmt.Errorf("%w: target value must be >= 1", ErrValidation)
	}

	now := s.now().UTC()
	habit := Habit{
		ID:          uuid.NewString(),
		OwnerID:     input.OwnerID,
		Name:        name,
		Category:    input.Category,
		TargetType:  input.TargetType,
		TargetValue: input.TargetValue,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListHabits returns the owner's habits, optionally only active ones.
func (s *Service) ListHabits(ctx context.Context, ownerID string, activeOnly bool) ([]Habit, error) {
	return s.habits.List(ctx, ownerID, activeOnly)
}

// RemovalMode reports how RemoveHabit disposed of a habit.
type RemovalMode string

const (
	RemovalDeleted     RemovalMode = "deleted"
	RemovalDeactivated RemovalMode = "deactivated"
)

// RemoveHabit hard-deletes a log-free habit and falls back to deactivation
// when history exists, so historical analytics stay intact.
func (s *Service) RemoveHabit(ctx context.Context, ownerID, habitID string) (RemovalMode, error) {
	err := s.habits.Delete(ctx, ownerID, habitID)
	if err == nil {
		return RemovalDeleted, nil
	}
	if !errors.Is(err, ErrConflict) {
		return "", err
	}

	if err := s.habits.Deactivate(ctx, ownerID, habitID); err != nil {
		return "", err
	}
	return RemovalDeactivated, nil
}

// LogCompletionInput captures a completion toggle from the API layer.
type LogCompletionInput struct {
	OwnerID   string
	HabitID   string
	Date      time.Time
	Completed bool
	Progress  int
}

// LogCompletion upserts the day's record for a habit. Calling it twice with
// identical arguments leaves exactly one stored record for the pair; updated
// arguments for the same day replace rather than duplicate.
func (s *Service) LogCompletion(ctx context.Context, input LogCompletionInput) (*DailyLog, error) {
	if input.Progress < 0 {
		return nil, fmt.Errorf("%w: progress must be >= 0", ErrValidation)
	}
	if input.Completed && input.Progress < 1 {
		return nil, fmt.Errorf("%w: completed log requires progress >= 1", ErrValidation)
	}

	day := DateOf(input.Date)
	today := DateOf(s.now())
	if day.After(today) {
		return nil, fmt.Errorf("%w: future-dated logs are rejected", ErrValidation)
	}

	habit, err := s.habits.Get(ctx, input.OwnerID, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, ErrNotFound
	}
	if !habit.IsActive {
		return nil, fmt.Errorf("%w: habit is deactivated", ErrValidation)
	}

	now := s.now().UTC()
	record := DailyLog{
		HabitID:   habit.ID,
		OwnerID:   habit.OwnerID,
		Date:      day,
		Completed: input.Completed,
		Progress:  input.Progress,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.logs.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// LogsForDate lists all of the owner's records for one calendar day.
func (s *Service) LogsForDate(ctx context.Context, ownerID string, date time.Time) ([]DailyLog, error) {
	return s.logs.ListForDate(ctx, ownerID, DateOf(date))
}

// HabitHistory returns a descending page of one habit's log history.
func (s *Service) HabitHistory(ctx context.Context, ownerID, habitID string, cursor *Cursor, limit int) ([]DailyLog, *Cursor, error) {
	habit, err := s.habits.Get(ctx, ownerID, habitID)
	if err != nil {
		return nil, nil, err
	}
	if habit == nil {
		return nil, nil, ErrNotFound
	}
	return s.logs.HistoryPage(ctx, ownerID, habitID, cursor, limit)
}
