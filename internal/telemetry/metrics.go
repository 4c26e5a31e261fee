package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts simulation runs. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	steps    prometheus.Counter
	duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chemsim",
			Name:      "runs_total",
			Help:      "Simulation runs by integrator and outcome.",
		}, []string{"integrator", "outcome"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chemsim",
			Name:      "steps_total",
			Help:      "Integration steps taken by successful runs.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chemsim",
			Name:      "run_duration_seconds",
			Help:      "Wall time of simulation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	reg.MustRegister(m.runs, m.steps, m.duration)
	return m
}

func (m *Metrics) ObserveRun(integrator string, steps int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(integrator, outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if err == nil {
		m.steps.Add(float64(steps))
	}
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format used by node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
