// Pipeline Prometheus instrumentation. Labels are kept low-cardinality: the
// outcome counter is labeled by terminal status, the step histogram by step
// name. Call ids never appear as labels.
package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// pipelineOutcomes counts terminal pipeline results by status
	// ("published", "failed", "duplicate", "rejected").
	pipelineOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_pipeline_outcomes_total",
			Help: "Terminal pipeline outcomes by status.",
		},
		[]string{"outcome"},
	)

	// pipelineInflight gauges pipelines currently holding a concurrency slot.
	pipelineInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "call_pipeline_inflight",
			Help: "Pipelines currently inside the bounded section.",
		},
	)

	// pipelineStepDur records per-step duration. Buckets skew long: the
	// transcription step for a multi-minute call takes tens of seconds.
	pipelineStepDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "call_pipeline_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"step"},
	)

	// reaperReleased counts stale claims released by the reaper.
	reaperReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "call_reaper_released_total",
			Help: "Stale call claims released by the reaper.",
		},
	)
)

func init() {
	prometheus.MustRegister(pipelineOutcomes, pipelineInflight, pipelineStepDur, reaperReleased)
}

// observeStep times one pipeline step.
func observeStep(step string, start time.Time) {
	pipelineStepDur.WithLabelValues(step).Observe(time.Since(start).Seconds())
}
