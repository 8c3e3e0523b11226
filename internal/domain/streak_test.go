package domain

import (
	"context"
	"testing"
	"time"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := ParseDate(value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return parsed
}

func TestStreakFromHistory(t *testing.T) {
	cases := []struct {
		name        string
		history     []struct {
			date      string
			completed bool
		}
		today       string
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "no logs",
			today:       "2024-01-10",
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name: "three consecutive days ending today",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-01", true},
				{"2024-01-02", true},
				{"2024-01-03", true},
			},
			today:       "2024-01-03",
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name: "gap splits runs into isolated days",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-01", true},
				{"2024-01-03", true},
			},
			today:       "2024-01-03",
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name: "streak survives an unlogged today",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-02", true},
				{"2024-01-03", true},
			},
			today:       "2024-01-04",
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "streak expires when last completion is older than yesterday",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-01", true},
				{"2024-01-02", true},
				{"2024-01-03", true},
			},
			today:       "2024-01-06",
			wantCurrent: 0,
			wantLongest: 3,
		},
		{
			name: "not-completed record breaks the run like a gap",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-01", true},
				{"2024-01-02", true},
				{"2024-01-03", true},
				{"2024-01-04", false},
			},
			today:       "2024-01-04",
			wantCurrent: 0,
			wantLongest: 3,
		},
		{
			name: "only not-completed records",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-02", false},
				{"2024-01-03", false},
			},
			today:       "2024-01-03",
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name: "run after an older not-completed day still counts",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-01", false},
				{"2024-01-02", true},
				{"2024-01-03", true},
			},
			today:       "2024-01-03",
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "not-completed day between completions acts as a gap",
			history: []struct {
				date      string
				completed bool
			}{
				{"2024-01-01", true},
				{"2024-01-02", false},
				{"2024-01-03", true},
			},
			today:       "2024-01-03",
			wantCurrent: 1,
			wantLongest: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			history := make([]DailyLog, 0, len(tc.history))
			for _, entry := range tc.history {
				history = append(history, DailyLog{
					HabitID:   "habit-1",
					Date:      day(t, entry.date),
					Completed: entry.completed,
				})
			}

			current, longest := streakFromHistory(history, day(t, tc.today))
			if current != tc.wantCurrent {
				t.Fatalf("current streak: expected %d got %d", tc.wantCurrent, current)
			}
			if longest != tc.wantLongest {
				t.Fatalf("longest streak: expected %d got %d", tc.wantLongest, longest)
			}
		})
	}
}

func TestComputeStreaksCoversEveryActiveHabit(t *testing.T) {
	habits := &stubHabitRepo{habits: []Habit{
		{ID: "habit-1", OwnerID: "owner-1", Name: "Read", IsActive: true},
		{ID: "habit-2", OwnerID: "owner-1", Name: "Run", IsActive: true},
	}}
	logs := &stubLogRepo{history: map[string][]DailyLog{
		"habit-1": {
			{HabitID: "habit-1", Date: day(t, "2024-01-02"), Completed: true},
			{HabitID: "habit-1", Date: day(t, "2024-01-03"), Completed: true},
		},
	}}

	calculator := NewStreakCalculator(habits, logs).WithClock(func() time.Time {
		return day(t, "2024-01-03")
	})

	summaries, err := calculator.ComputeStreaks(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries got %d", len(summaries))
	}

	if summaries[0].HabitID != "habit-1" || summaries[0].CurrentStreak != 2 || summaries[0].LongestStreak != 2 {
		t.Fatalf("unexpected first summary: %+v", summaries[0])
	}
	if summaries[1].HabitID != "habit-2" || summaries[1].CurrentStreak != 0 || summaries[1].LongestStreak != 0 {
		t.Fatalf("habit without logs should report zero streaks: %+v", summaries[1])
	}
	if summaries[0].Name != "Read" {
		t.Fatalf("summary should carry the habit name, got %q", summaries[0].Name)
	}
}

type stubHabitRepo struct {
	habits []Habit
}

func (s *stubHabitRepo) Create(ctx context.Context, habit Habit) error { return nil }

func (s *stubHabitRepo) Get(ctx context.Context, ownerID, habitID string) (*Habit, error) {
	for _, habit := range s.habits {
		if habit.ID == habitID && habit.OwnerID == ownerID {
			h := habit
			return &h, nil
		}
	}
	return nil, nil
}

func (s *stubHabitRepo) List(ctx context.Context, ownerID string, activeOnly bool) ([]Habit, error) {
	out := make([]Habit, 0, len(s.habits))
	for _, habit := range s.habits {
		if habit.OwnerID != ownerID {
			continue
		}
		if activeOnly && !habit.IsActive {
			continue
		}
		out = append(out, habit)
	}
	return out, nil
}

func (s *stubHabitRepo) Deactivate(ctx context.Context, ownerID, habitID string) error { return nil }

func (s *stubHabitRepo) Delete(ctx context.Context, ownerID, habitID string) error { return nil }

type stubLogRepo struct {
	history map[string][]DailyLog
}

func (s *stubLogRepo) Upsert(ctx context.Context, record DailyLog) error { return nil }

func (s *stubLogRepo) ListForDate(ctx context.Context, ownerID string, date time.Time) ([]DailyLog, error) {
	return nil, nil
}

func (s *stubLogRepo) History(ctx context.Context, ownerID, habitID string, from, to time.Time) ([]DailyLog, error) {
	return s.history[habitID], nil
}

func (s *stubLogRepo) HistoryPage(ctx context.Context, ownerID, habitID string, cursor *Cursor, limit int) ([]DailyLog, *Cursor, error) {
	return nil, nil, nil
}

func (s *stubLogRepo) CompletedCountsByDate(ctx context.Context, ownerID string, from, to time.Time) (map[time.Time]int, error) {
	return map[time.Time]int{}, nil
}
