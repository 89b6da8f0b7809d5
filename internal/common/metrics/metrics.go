// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total number of pipeline runs completed by stage",
		},
		[]string{"stage"},
	)

	PipelineRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_failed_total",
			Help: "Total number of pipeline runs failed by stage",
		},
		[]string{"stage", "error_code"},
	)

	PipelineRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_run_duration_seconds",
			Help: "Duration of stage processing in seconds",
		},
		[]string{"stage"},
	)

	SkillsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skills_mapped_total",
			Help: "Extracted skills by mapping outcome (taxonomy, custom, dropped)",
		},
		[]string{"outcome"},
	)

	CoursesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courses_generated_total",
			Help: "Total number of course specs generated",
		},
	)
)
