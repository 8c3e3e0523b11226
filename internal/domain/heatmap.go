package domain

import (
	"context"
	"time"
)

const (
	// DefaultHeatmapWindowDays covers the client's three-month grid.
	DefaultHeatmapWindowDays = 90
	// MaxHeatmapWindowDays bounds the range a caller may request.
	MaxHeatmapWindowDays = 365
)

// HeatmapAggregator buckets completion density per day over a trailing window.
type HeatmapAggregator struct {
	logs LogRepository
	now  func() time.Time
}

// NewHeatmapAggregator constructs a HeatmapAggregator.
func NewHeatmapAggregator(logs LogRepository) *HeatmapAggregator {
	return &HeatmapAggregator{logs: logs, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (a *HeatmapAggregator) WithClock(now func() time.Time) *HeatmapAggregator {
	a.now = now
	return a
}

// ComputeHeatmap returns exactly windowDays entries keyed by wire-format
// date, with the window ending at today. Days without completed logs are
// present with intensity 0 so the rendering layer always gets a uniform grid.
// Logs of deactivated habits still count; deactivation only blocks future
// logging.
func (a *HeatmapAggregator) ComputeHeatmap(ctx context.Context, ownerID string, windowDays int) (map[string]int, error) {
	if windowDays <= 0 {
		windowDays = DefaultHeatmapWindowDays
	}
	if windowDays > MaxHeatmapWindowDays {
		windowDays = MaxHeatmapWindowDays
	}

	today := DateOf(a.now())
	from := today.AddDate(0, 0, -(windowDays - 1))

	counts, err := a.logs.CompletedCountsByDate(ctx, ownerID, from, today)
	if err != nil {
		return nil, err
	}

	heatmap := make(map[string]int, windowDays)
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		heatmap[FormatDate(day)] = counts[day]
	}
	return heatmap, nil
}
