package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/tourload/internal/metrics"
	"github.com/vvka-141/tourload/internal/pipeline"
	"github.com/vvka-141/tourload/pkg/tourload"
)

func sampleReport() *pipeline.Report {
	return &pipeline.Report{
		StartedAt: time.Unix(1767225600, 0),
		Duration:  1500 * time.Millisecond,
		Results: []tourload.LoadResult{
			{
				Table:        "Passengers",
				RowsInserted: 132,
				Metrics: []tourload.MetricResult{
					{Name: "row_count", Passed: true},
					{Name: "sum_passengers", Passed: false},
				},
			},
			{
				Table:        "Weather",
				RowsInserted: 132,
				Metrics:      []tourload.MetricResult{{Name: "row_count", Passed: true}},
			},
		},
	}
}

func TestObserve(t *testing.T) {
	m := metrics.New()
	m.Observe(sampleReport())

	assert.Equal(t, 132.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("Passengers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChecksumMismatches.WithLabelValues("Passengers")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ChecksumMismatches.WithLabelValues("Weather")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.RunDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RunSuccess))
	assert.Equal(t, 1767225600.0, testutil.ToFloat64(m.LastRunTimestamp))
}

func TestObserve_RolledBackTableReportsZeroRows(t *testing.T) {
	report := sampleReport()
	report.Results[1].LoadErr = &tourload.LoadError{Table: "Weather", Index: 3, Err: errors.New("boom")}

	m := metrics.New()
	m.Observe(report)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("Weather")))
}

func TestObserve_Success(t *testing.T) {
	report := sampleReport()
	report.Results[0].Metrics[1].Passed = true

	m := metrics.New()
	m.Observe(report)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunSuccess))
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New()
		metrics.New()
	})
}

func TestWriteFile(t *testing.T) {
	m := metrics.New()
	m.Observe(sampleReport())

	path := filepath.Join(t.TempDir(), "tourload.prom")
	require.NoError(t, m.WriteFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `tourload_rows_loaded{table="Passengers"} 132`)
	assert.Contains(t, out, `tourload_checksum_mismatches{table="Passengers"} 1`)
	assert.Contains(t, out, "tourload_run_duration_seconds 1.5")
	assert.Contains(t, out, "tourload_run_success 0")
	assert.True(t, strings.HasPrefix(out, "# HELP"))
}

func TestWriteFile_BadDirectory(t *testing.T) {
	m := metrics.New()
	err := m.WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
