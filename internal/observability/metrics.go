package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	habitPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "habit_service",
		Subsystem: "persistence",
		Name:      "last_habit_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent habit definition persisted.",
	})
	logUpsertGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "habit_service",
		Subsystem: "persistence",
		Name:      "last_log_upserted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent daily log upsert.",
	})
	logUpsertCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "habit_service",
		Subsystem: "persistence",
		Name:      "log_upserts_total",
		Help:      "Number of daily log upserts applied to the store.",
	})
)

func init() {
	prometheus.MustRegister(habitPersistGauge, logUpsertGauge, logUpsertCounter)
}

// RecordHabitPersisted updates the habit persistence watermark gauge.
func RecordHabitPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	habitPersistGauge.Set(float64(ts.Unix()))
}

// RecordLogUpserted updates the log upsert watermark and counter.
func RecordLogUpserted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	logUpsertGauge.Set(float64(ts.Unix()))
	logUpsertCounter.Inc()
}
