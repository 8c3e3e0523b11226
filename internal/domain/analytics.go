package domain

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AnalyticsResult couples the two read-side computations for presentation.
type AnalyticsResult struct {
	Heatmap map[string]int
	Streaks []StreakSummary
}

// Analytics composes the streak calculator and heatmap aggregator. Nothing
// depends on it; it is the top of the read path.
type Analytics struct {
	streaks *StreakCalculator
	heatmap *HeatmapAggregator
}

// NewAnalytics constructs the facade.
func NewAnalytics(streaks *StreakCalculator, heatmap *HeatmapAggregator) *Analytics {
	return &Analytics{streaks: streaks, heatmap: heatmap}
}

// GetAnalytics runs both sub-computations concurrently; they are read-only
// and independent of each other.
func (a *Analytics) GetAnalytics(ctx context.Context, ownerID string) (*AnalyticsResult, error) {
	var result AnalyticsResult

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		streaks, err := a.streaks.ComputeStreaks(ctx, ownerID)
		if err != nil {
			return err
		}
		result.Streaks = streaks
		return nil
	})
	group.Go(func() error {
		heatmap, err := a.heatmap.ComputeHeatmap(ctx, ownerID, DefaultHeatmapWindowDays)
		if err != nil {
			return err
		}
		result.Heatmap = heatmap
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}
