// Package metric provides prometheus instrumentation for the configuration
// apply pipeline.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Apply outcome label values.
const (
	OutcomeApplied     = "applied"
	OutcomeRejected    = "rejected"
	OutcomeCancelled   = "cancelled"
	OutcomeApplyFailed = "apply_failed"
	OutcomeNotFound    = "not_found"
)

// Metrics contains all pipeline-level metrics.
type Metrics struct {
	AppliesTotal       *prometheus.CounterVec
	ApplyDuration      prometheus.Histogram
	ValidationFindings *prometheus.CounterVec
	BrokerReconfigures *prometheus.CounterVec
	CurrentVersion     prometheus.Gauge
	VersionsStored     prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		AppliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "natsconf",
				Subsystem: "apply",
				Name:      "total",
				Help:      "Total number of apply attempts by outcome",
			},
			[]string{"outcome", "change_type"},
		),

		ApplyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "natsconf",
				Subsystem: "apply",
				Name:      "duration_seconds",
				Help:      "End-to-end apply pipeline duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		ValidationFindings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "natsconf",
				Subsystem: "validation",
				Name:      "findings_total",
				Help:      "Total validation findings by severity",
			},
			[]string{"severity"},
		),

		BrokerReconfigures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "natsconf",
				Subsystem: "broker",
				Name:      "reconfigures_total",
				Help:      "Total broker reconfigure calls by status",
			},
			[]string{"status"},
		),

		CurrentVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "natsconf",
				Subsystem: "version",
				Name:      "current",
				Help:      "Number of the currently applied configuration version",
			},
		),

		VersionsStored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "natsconf",
				Subsystem: "version",
				Name:      "stored",
				Help:      "Number of configuration versions retained in the store",
			},
		),
	}
}

// collectors returns every metric for bulk registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.AppliesTotal,
		m.ApplyDuration,
		m.ValidationFindings,
		m.BrokerReconfigures,
		m.CurrentVersion,
		m.VersionsStored,
	}
}
