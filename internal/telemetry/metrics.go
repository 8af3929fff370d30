package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics covers the processing pipeline: per-stage outcomes and
// latencies plus whole-run totals.
type WorkflowMetrics struct {
	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	workflowRuns  *prometheus.CounterVec
	workflowTime  *prometheus.HistogramVec
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan",
			Subsystem: "workflow",
			Name:      "stage_runs_total",
			Help:      "Stage executions by stage name and outcome.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loan",
			Subsystem: "workflow",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		workflowRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan",
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Completed workflow runs by final status.",
		}, []string{"status"}),
		workflowTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loan",
			Subsystem: "workflow",
			Name:      "run_duration_seconds",
			Help:      "End to end workflow latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"status"}),
	}
	reg.MustRegister(m.stageRuns, m.stageDuration, m.workflowRuns, m.workflowTime)
	return m
}

func (m *WorkflowMetrics) ObserveStage(stage, status string, elapsed time.Duration) {
	m.stageRuns.WithLabelValues(stage, status).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *WorkflowMetrics) ObserveWorkflow(status string, elapsed time.Duration) {
	m.workflowRuns.WithLabelValues(status).Inc()
	m.workflowTime.WithLabelValues(status).Observe(elapsed.Seconds())
}
