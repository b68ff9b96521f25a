// Package metrics exposes Prometheus metrics for jobs, transfers and HTTP requests.
package metrics

import (
	"github.com/kiranshivaraju/mediashelf/internal/jobs"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "mediashelf"

	jobsFinishedTotal  = "jobs_finished_total"
	jobsActive         = "jobs_active"
	jobsCreatedTotal   = "jobs_created_total"
	bridgeDegradedName = "bridge_degraded_uploads_total"

	// Labels
	kindLabel   = "kind"
	statusLabel = "status"
)

var jobsCreatedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      jobsCreatedTotal,
		Help:      "number of jobs started, by kind",
	},
	[]string{kindLabel},
)

var jobsFinishedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      jobsFinishedTotal,
		Help:      "number of jobs that reached a terminal status, by kind and status",
	},
	[]string{kindLabel, statusLabel},
)

var jobsActiveMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      jobsActive,
		Help:      "number of jobs currently preparing, uploading, writing or deleting",
	},
)

var bridgeDegradedMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      bridgeDegradedName,
		Help:      "number of bridge uploads stored without a confirmed file id",
	},
)

// JobObserver returns a tracker observer that keeps the job metrics current.
func JobObserver() jobs.Observer {
	return func(e jobs.Event) {
		jobsActiveMetric.Set(float64(e.Active))

		switch e.Type {
		case jobs.EventCreated:
			jobsCreatedMetric.With(prometheus.Labels{kindLabel: string(e.Record.Kind)}).Inc()
		case jobs.EventUpdated:
			if e.Record.Status.IsTerminal() {
				jobsFinishedMetric.With(prometheus.Labels{
					kindLabel:   string(e.Record.Kind),
					statusLabel: string(e.Record.Status),
				}).Inc()
			}
		}
	}
}

// IncreaseBridgeDegraded counts an upload kept under its file name.
func IncreaseBridgeDegraded() {
	bridgeDegradedMetric.Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsCreatedMetric)
	prometheus.MustRegister(jobsFinishedMetric)
	prometheus.MustRegister(jobsActiveMetric)
	prometheus.MustRegister(bridgeDegradedMetric)
}
