package pipeline

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters and timings for runs. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	rowsRead      prometheus.Counter
	groupsTotal   prometheus.Counter
	stageDuration *prometheus.HistogramVec
}

// NewMetrics creates Metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry creates Metrics registered on registry.
func NewMetricsWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "abgroup_runs_total",
			Help: "Total number of runs by final status",
		}, []string{"status"}),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abgroup_rows_read_total",
			Help: "Total number of input rows read",
		}),
		groupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "abgroup_groups_total",
			Help: "Total number of distinct column_a groups tallied",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "abgroup_stage_duration_seconds",
			Help:    "Stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
	}

	registry.MustRegister(
		m.runsTotal,
		m.rowsRead,
		m.groupsTotal,
		m.stageDuration,
	)

	return m
}

// WriteToTextfile writes the current values in the text exposition format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}

func (m *Metrics) observeStage(stage string, duration time.Duration, metadata map[string]interface{}) {
	if m == nil {
		return
	}

	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())

	switch stage {
	case StageLoad:
		if rows, ok := metadata["rows"].(int); ok {
			m.rowsRead.Add(float64(rows))
		}
	case StageGroup:
		if groups, ok := metadata["groups"].(int); ok {
			m.groupsTotal.Add(float64(groups))
		}
	}
}

func (m *Metrics) observeRun(result *ExecutionResult) {
	if m == nil {
		return
	}

	m.runsTotal.WithLabelValues(result.Status).Inc()
}
