package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlanBuildFailedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcp_plan_build_failed",
			Help: "Number of times a bundle plan has failed to build",
		},
		[]string{"bundle", "error_type"},
	)

	PlanBuildCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bcp_plan_build_count",
			Help: "Total number of times a bundle plan has been built",
		},
	)

	PlanBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcp_plan_build_duration_seconds",
			Help:    "Plan build duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
		},
		[]string{"bundle"},
	)

	LastPlanBuildEnd = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bcp_last_plan_build_end_timestamp",
			Help: "Unix timestamp of when the last plan build ended",
		},
		[]string{"bundle"},
	)
)

// PlanBuildSucceeded records a successful plan build for a bundle.
func PlanBuildSucceeded(bundle string, start time.Time) {
	PlanBuildCount.Inc()
	PlanBuildDuration.WithLabelValues(bundle).Observe(time.Since(start).Seconds())
	LastPlanBuildEnd.WithLabelValues(bundle).SetToCurrentTime()
}

// PlanBuildFailed records a failed plan build with its error class.
func PlanBuildFailed(bundle, errorType string) {
	PlanBuildCount.Inc()
	PlanBuildFailedCount.WithLabelValues(bundle, errorType).Inc()
	LastPlanBuildEnd.WithLabelValues(bundle).SetToCurrentTime()
}
