// Package metrics provides Prometheus metrics for queue rebuilds.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"IndicatorsQueue/internal/domain"
)

const namespace = "indicators_queue"

// Run outcomes.
const (
	StatusSuccess          = "success"
	StatusMonitoringFailed = "monitoring_failed"
	StatusFailed           = "failed"
	StatusSkipped          = "skipped"
)

var (
	// RunsTotal counts rebuilds by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of queue rebuilds",
		},
		[]string{"status"},
	)

	// RunDuration measures rebuild duration.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of queue rebuilds in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// Items reports item counts of the last completed rebuild per pipeline stage.
	Items = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Item counts of the last rebuild by stage",
		},
		[]string{"stage"},
	)

	// LookupFailures counts tender lookups that failed and kept the item.
	LookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Total number of failed tender lookups",
		},
	)

	// LastQueueID is the history id of the last published queue.
	LastQueueID = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_queue_id",
			Help:      "History id of the last published queue",
		},
	)
)

// RecordRun records a finished rebuild.
func RecordRun(status string, duration float64) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration)
}

// RecordResult publishes the stage counters of a completed rebuild.
func RecordResult(r domain.RunResult) {
	Items.WithLabelValues("ingested").Set(float64(r.Ingested))
	Items.WithLabelValues("filtered_cpv").Set(float64(r.FilteredByCPV))
	Items.WithLabelValues("unresolved_region").Set(float64(r.DroppedNoRegion))
	Items.WithLabelValues("unbanded").Set(float64(r.Unbanded))
	Items.WithLabelValues("on_monitoring").Set(float64(r.OnMonitoring))
	Items.WithLabelValues("published").Set(float64(r.Published))
	Items.WithLabelValues("top_risk").Set(float64(r.TopRisk))
	LookupFailures.Add(float64(r.LookupFailures))
	LastQueueID.Set(float64(r.QueueID))
}

// RecordSkipped records a tick skipped because another rebuild held the lock.
func RecordSkipped() {
	RunsTotal.WithLabelValues(StatusSkipped).Inc()
}
