// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageExecutionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_completed_total",
			Help: "Total number of stage executions completed",
		},
		[]string{"stage"},
	)

	StageExecutionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_failed_total",
			Help: "Total number of stage executions failed",
		},
		[]string{"stage", "error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of stage execution in seconds",
		},
		[]string{"stage"},
	)

	BacktrackAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_backtrack_attempts_total",
			Help: "Total number of backtrack attempts per run outcome",
		},
		[]string{"outcome"},
	)

	ResearchRunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_research_runs_active",
			Help: "Number of research runs currently in flight",
		},
	)
)
