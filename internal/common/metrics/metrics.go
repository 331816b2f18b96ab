// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wellness-engine/internal/models"
)

// Transport label values.
const (
	TransportHTTP   = "http"
	TransportWorker = "worker"
	TransportCLI    = "cli"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_assessments_total",
			Help: "Total number of assessments by transport and outcome",
		},
		[]string{"transport", "status"},
	)

	SubscoreOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wellness_subscore_outcomes_total",
			Help: "Subscore outcomes by subscore and status",
		},
		[]string{"subscore", "status"},
	)

	AssessmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wellness_assessment_duration_seconds",
			Help:    "Duration of assessment evaluation in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"transport"},
	)

	ReferenceRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wellness_reference_rows",
			Help: "Rows loaded per reference table",
		},
		[]string{"table"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// SubscoreRecorder counts subscore outcomes. It satisfies the engine's
// recorder hook.
type SubscoreRecorder struct{}

func (SubscoreRecorder) ObserveSubscore(subscore string, status models.SubscoreStatus) {
	SubscoreOutcomes.WithLabelValues(subscore, string(status)).Inc()
}

// ObserveAssessment records one evaluation. status is "ok" or an error code.
func ObserveAssessment(transport, status string, elapsed time.Duration) {
	AssessmentsTotal.WithLabelValues(transport, status).Inc()
	AssessmentDuration.WithLabelValues(transport).Observe(elapsed.Seconds())
}

// SetReferenceRows publishes per-table row counts.
func SetReferenceRows(counts map[string]int) {
	for table, n := range counts {
		ReferenceRows.WithLabelValues(table).Set(float64(n))
	}
}
