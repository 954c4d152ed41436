package mzml

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Reader and by Extract.
// A nil *Metrics disables collection.
type Metrics struct {
	IndexBuildsTotal        *prometheus.CounterVec
	IndexBytesScannedTotal  prometheus.Counter
	RecordsReadTotal        *prometheus.CounterVec
	RecordReadFailuresTotal *prometheus.CounterVec
	RecordReadDuration      *prometheus.HistogramVec
	ValidationFailuresTotal *prometheus.CounterVec
	ExtractionsTotal        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mzml_index_builds_total",
				Help: "Indexes resolved on open by strategy (embedded, scan, supplied).",
			},
			[]string{"strategy"},
		),
		IndexBytesScannedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mzml_index_bytes_scanned_total",
				Help: "Bytes read by full-document index scans.",
			},
		),
		RecordsReadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mzml_records_read_total",
				Help: "Records decoded by kind.",
			},
			[]string{"kind"},
		),
		RecordReadFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mzml_record_read_failures_total",
				Help: "Failed record reads by kind and reason (not_found, parse, too_large, io, validation).",
			},
			[]string{"kind", "reason"},
		),
		RecordReadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mzml_record_read_duration_seconds",
				Help:    "Seek and decode latency of a single record.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"kind"},
		),
		ValidationFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mzml_validation_failures_total",
				Help: "Vocabulary validation failures by scope (shell, spectrum, chromatogram).",
			},
			[]string{"scope"},
		),
		ExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mzml_extractions_total",
				Help: "Extracted documents by output variant and status.",
			},
			[]string{"variant", "status"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.IndexBuildsTotal,
			m.IndexBytesScannedTotal,
			m.RecordsReadTotal,
			m.RecordReadFailuresTotal,
			m.RecordReadDuration,
			m.ValidationFailuresTotal,
			m.ExtractionsTotal,
		)
	}
	return m
}
