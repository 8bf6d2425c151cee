package observer

import (
	"Go2FlavorSpectra/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver counts pipeline events and outcomes in Prometheus metrics.
type MetricsObserver struct {
	events  *prometheus.CounterVec
	runs    *prometheus.CounterVec
	samples prometheus.Counter
}

// NewMetricsObserver creates the counters and registers them with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	m := &MetricsObserver{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flavorspectra_events_total",
				Help: "Pipeline events by severity and failure kind",
			},
			[]string{"severity", "kind"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flavorspectra_runs_total",
				Help: "Runs processed by outcome",
			},
			[]string{"outcome"},
		),
		samples: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flavorspectra_samples_total",
				Help: "Samples appended to the dataset",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.events, m.runs, m.samples} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements model.Observer.
func (m *MetricsObserver) Observe(ev model.Event) {
	kind := "none"
	if ev.Kind != 0 {
		kind = ev.Kind.String()
	}
	m.events.WithLabelValues(ev.Severity.String(), kind).Inc()
}

// RunAggregated records a run that contributed n samples.
func (m *MetricsObserver) RunAggregated(n int) {
	m.runs.WithLabelValues("aggregated").Inc()
	m.samples.Add(float64(n))
}

// RunSkipped records a run that was dropped.
func (m *MetricsObserver) RunSkipped(kind model.ErrorKind) {
	m.runs.WithLabelValues("skipped_" + kind.String()).Inc()
}
