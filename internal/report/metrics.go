package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gotrs-io/recruitment-e2e/internal/scenario"
)

// Metrics aggregates outcomes of one run on a private registry so the run can
// be written out as a node_exporter textfile.
type Metrics struct {
	reg       *prometheus.Registry
	scenarios *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewMetrics(suite string) *Metrics {
	labels := prometheus.Labels{"suite": suite}
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "recruit_e2e_scenarios_total",
			Help:        "Scenarios finished, by status and priority",
			ConstLabels: labels,
		}, []string{"status", "priority"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "recruit_e2e_scenario_duration_seconds",
			Help:        "Wall time of each scenario including browser setup",
			ConstLabels: labels,
			Buckets:     []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"status"}),
	}
	m.reg.MustRegister(m.scenarios, m.duration)
	return m
}

// Observe counts o.
func (m *Metrics) Observe(o scenario.Outcome) {
	m.scenarios.WithLabelValues(string(o.Status), o.Priority).Inc()
	m.duration.WithLabelValues(string(o.Status)).Observe(o.Duration.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteFile writes the metrics in the text exposition format. The file is
// replaced atomically.
func (m *Metrics) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
