package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/habits/internal/domain"
)

func TestGetAnalyticsComposesBothComputations(t *testing.T) {
	service, repo := newService(t, "2024-03-10")
	habit := mustCreateHabit(t, service, "owner-1", "Read")

	for _, date := range []string{"2024-03-09", "2024-03-10"} {
		_, err := service.LogCompletion(context.Background(), domain.LogCompletionInput{
			OwnerID: "owner-1", HabitID: habit.ID, Date: mustDate(t, date), Completed: true, Progress: 1,
		})
		require.NoError(t, err)
	}

	clock := fixedClock(t, "2024-03-10T10:30:00Z")
	streaks := domain.NewStreakCalculator(repo, repo).WithClock(clock)
	heatmap := domain.NewHeatmapAggregator(repo).WithClock(clock)
	analytics := domain.NewAnalytics(streaks, heatmap)

	result, err := analytics.GetAnalytics(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, result.Heatmap, domain.DefaultHeatmapWindowDays)
	require.Equal(t, 1, result.Heatmap["2024-03-10"])

	require.Len(t, result.Streaks, 1)
	require.Equal(t, habit.ID, result.Streaks[0].HabitID)
	require.Equal(t, 2, result.Streaks[0].CurrentStreak)
	require.Equal(t, 2, result.Streaks[0].LongestStreak)
}
