package domain

import (
	"context"
	"time"
)

// StreakSummary is the derived streak state for a single habit. It is
// recomputed on demand and never persisted.
type StreakSummary struct {
	HabitID       string
	Name          string
	CurrentStreak int
	LongestStreak int
}

// StreakCalculator derives current and longest consecutive-completion runs
// from log history.
type StreakCalculator struct {
	habits HabitRepository
	logs   LogRepository
	now    func() time.Time
}

// NewStreakCalculator constructs a StreakCalculator.
func NewStreakCalculator(habits HabitRepository, logs LogRepository) *StreakCalculator {
	return &StreakCalculator{habits: habits, logs: logs, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (c *StreakCalculator) WithClock(now func() time.Time) *StreakCalculator {
	c.now = now
	return c
}

// ComputeStreaks returns one summary per active habit. Habits without logs
// report zero for both streaks.
func (c *StreakCalculator) ComputeStreaks(ctx context.Context, ownerID string) ([]StreakSummary, error) {
	habits, err := c.habits.List(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}

	today := DateOf(c.now())
	summaries := make([]StreakSummary, 0, len(habits))
	for _, habit := range habits {
		history, err := c.logs.History(ctx, ownerID, habit.ID, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		current, longest := streakFromHistory(history, today)
		summaries = append(summaries, StreakSummary{
			HabitID:       habit.ID,
			Name:          habit.Name,
			CurrentStreak: current,
			LongestStreak: longest,
		})
	}
	return summaries, nil
}

// streakFromHistory walks an ascending history once. A record with
// Completed=false occupies its day without extending a run, so it breaks
// continuation exactly like a missing day.
func streakFromHistory(history []DailyLog, today time.Time) (current, longest int) {
	var (
		runLength int
		lastDay   time.Time
	)

	for _, record := range history {
		day := DateOf(record.Date)
		if !record.Completed {
			// A not-completed record occupies its day: the run it follows is
			// dead, and a completion the next day starts a fresh run of 1.
			runLength = 0
			lastDay = day
			continue
		}
		if !lastDay.IsZero() && day.Equal(lastDay.AddDate(0, 0, 1)) {
			runLength++
		} else {
			runLength = 1
		}
		if runLength > longest {
			longest = runLength
		}
		lastDay = day
	}

	if runLength == 0 {
		return 0, longest
	}

	// The run counts as current only while its last completed day is today
	// or yesterday: a user who has not yet logged today keeps the streak,
	// anything older has expired.
	if lastDay.Equal(today) || lastDay.Equal(today.AddDate(0, 0, -1)) {
		return runLength, longest
	}
	return 0, longest
}
