// Package metrics records run outcomes as Prometheus metrics and writes them
// in the text exposition format, for a node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vvka-141/tourload/internal/pipeline"
)

const namespace = "tourload"

// Metrics holds the gauges describing the last run.
type Metrics struct {
	registry *prometheus.Registry

	RowsLoaded         *prometheus.GaugeVec // labels: table
	ChecksumMismatches *prometheus.GaugeVec // labels: table
	RunDuration        prometheus.Gauge
	RunSuccess         prometheus.Gauge
	LastRunTimestamp   prometheus.Gauge
}

// New creates the metrics on a private registry, so repeated calls never
// collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Rows committed to the table by the last run.",
		}, []string{"table"}),
		ChecksumMismatches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "checksum_mismatches",
			Help:      "Checksum metrics that differed between input file and store.",
		}, []string{"table"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		RunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 when every table loaded and verified, 0 otherwise.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run started.",
		}),
	}

	m.registry.MustRegister(
		m.RowsLoaded,
		m.ChecksumMismatches,
		m.RunDuration,
		m.RunSuccess,
		m.LastRunTimestamp,
	)
	return m
}

// Registry exposes the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records a completed run.
func (m *Metrics) Observe(report *pipeline.Report) {
	for _, res := range report.Results {
		rows := res.RowsInserted
		if res.LoadErr != nil {
			rows = 0
		}
		m.RowsLoaded.WithLabelValues(res.Table).Set(float64(rows))
		m.ChecksumMismatches.WithLabelValues(res.Table).Set(float64(len(res.Mismatches())))
	}
	m.RunDuration.Set(report.Duration.Seconds())
	m.LastRunTimestamp.Set(float64(report.StartedAt.Unix()))
	if report.Passed() {
		m.RunSuccess.Set(1)
	} else {
		m.RunSuccess.Set(0)
	}
}

// ObserveFailure records a run that ended with an error before reporting.
func (m *Metrics) ObserveFailure() {
	m.RunSuccess.Set(0)
}

// WriteFile writes the metrics atomically to path.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
