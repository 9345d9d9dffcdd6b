package alerts

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/HerbHall/sentinel/internal/state"
)

// Diagnosis outcome label values.
const (
	outcomeSuccess     = "success"
	outcomeFailure     = "failure"
	outcomeBusy        = "busy"
	outcomeRateLimited = "rate_limited"
)

type metrics struct {
	active    prometheus.GaugeFunc
	diagnoses *prometheus.CounterVec
	latency   prometheus.Histogram
}

func newMetrics(c *state.Container) *metrics {
	return &metrics{
		active: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "sentinel_alerts_active",
			Help: "Number of unresolved alerts.",
		}, func() float64 {
			return float64(len(c.Snapshot().ActiveAlerts()))
		}),
		diagnoses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_diagnosis_requests_total",
			Help: "Diagnosis requests by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_diagnosis_duration_seconds",
			Help:    "Time spent waiting on the diagnostic collaborator.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.active, m.diagnoses, m.latency} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
