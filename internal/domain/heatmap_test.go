package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/habits/internal/domain"
	"example.com/habits/internal/persistence/memory"
)

func newHeatmap(t *testing.T, repo *memory.Repository, today string) *domain.HeatmapAggregator {
	t.Helper()
	return domain.NewHeatmapAggregator(repo).WithClock(fixedClock(t, today+"T10:30:00Z"))
}

func TestComputeHeatmapReturnsUniformWindow(t *testing.T) {
	service, repo := newService(t, "2024-03-10")
	habit := mustCreateHabit(t, service, "owner-1", "Read")

	for _, date := range []string{"2024-03-08", "2024-03-09", "2024-03-10"} {
		_, err := service.LogCompletion(context.Background(), domain.LogCompletionInput{
			OwnerID: "owner-1", HabitID: habit.ID, Date: mustDate(t, date), Completed: true, Progress: 1,
		})
		require.NoError(t, err)
	}
	// Not-completed records contribute zero intensity.
	_, err := service.LogCompletion(context.Background(), domain.LogCompletionInput{
		OwnerID: "owner-1", HabitID: habit.ID, Date: mustDate(t, "2024-03-07"), Completed: false, Progress: 0,
	})
	require.NoError(t, err)

	heatmap, err := newHeatmap(t, repo, "2024-03-10").ComputeHeatmap(context.Background(), "owner-1", domain.DefaultHeatmapWindowDays)
	require.NoError(t, err)
	require.Len(t, heatmap, domain.DefaultHeatmapWindowDays)

	require.Equal(t, 1, heatmap["2024-03-10"])
	require.Equal(t, 1, heatmap["2024-03-09"])
	require.Equal(t, 0, heatmap["2024-03-07"])

	// The oldest day of the window is present even without any record.
	oldest := mustDate(t, "2024-03-10").AddDate(0, 0, -(domain.DefaultHeatmapWindowDays - 1))
	intensity, ok := heatmap[domain.FormatDate(oldest)]
	require.True(t, ok)
	require.Equal(t, 0, intensity)

	// A day before the window never appears.
	_, ok = heatmap[domain.FormatDate(oldest.AddDate(0, 0, -1))]
	require.False(t, ok)
}

func TestComputeHeatmapSumsAcrossHabits(t *testing.T) {
	service, repo := newService(t, "2024-03-10")
	first := mustCreateHabit(t, service, "owner-1", "Read")
	second := mustCreateHabit(t, service, "owner-1", "Run")

	for _, habitID := range []string{first.ID, second.ID} {
		_, err := service.LogCompletion(context.Background(), domain.LogCompletionInput{
			OwnerID: "owner-1", HabitID: habitID, Date: mustDate(t, "2024-03-10"), Completed: true, Progress: 1,
		})
		require.NoError(t, err)
	}

	heatmap, err := newHeatmap(t, repo, "2024-03-10").ComputeHeatmap(context.Background(), "owner-1", 7)
	require.NoError(t, err)
	require.Len(t, heatmap, 7)
	require.Equal(t, 2, heatmap["2024-03-10"])
}

func TestComputeHeatmapCountsDeactivatedHabits(t *testing.T) {
	service, repo := newService(t, "2024-03-10")
	habit := mustCreateHabit(t, service, "owner-1", "Read")

	_, err := service.LogCompletion(context.Background(), domain.LogCompletionInput{
		OwnerID: "owner-1", HabitID: habit.ID, Date: mustDate(t, "2024-03-09"), Completed: true, Progress: 1,
	})
	require.NoError(t, err)

	mode, err := service.RemoveHabit(context.Background(), "owner-1", habit.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RemovalDeactivated, mode)

	heatmap, err := newHeatmap(t, repo, "2024-03-10").ComputeHeatmap(context.Background(), "owner-1", 7)
	require.NoError(t, err)
	require.Equal(t, 1, heatmap["2024-03-09"])
}

func TestComputeHeatmapClampsWindow(t *testing.T) {
	repo := memory.NewRepository()
	aggregator := newHeatmap(t, repo, "2024-03-10")

	heatmap, err := aggregator.ComputeHeatmap(context.Background(), "owner-1", 1000)
	require.NoError(t, err)
	require.Len(t, heatmap, domain.MaxHeatmapWindowDays)

	heatmap, err = aggregator.ComputeHeatmap(context.Background(), "owner-1", 0)
	require.NoError(t, err)
	require.Len(t, heatmap, domain.DefaultHeatmapWindowDays)
}

func TestComputeHeatmapIsolatesOwners(t *testing.T) {
	service, repo := newService(t, "2024-03-10")
	habit := mustCreateHabit(t, service, "owner-1", "Read")

	_, err := service.LogCompletion(context.Background(), domain.LogCompletionInput{
		OwnerID: "owner-1", HabitID: habit.ID, Date: mustDate(t, "2024-03-10"), Completed: true, Progress: 1,
	})
	require.NoError(t, err)

	heatmap, err := newHeatmap(t, repo, "2024-03-10").ComputeHeatmap(context.Background(), "owner-2", 7)
	require.NoError(t, err)
	require.Equal(t, 0, heatmap["2024-03-10"])
}
