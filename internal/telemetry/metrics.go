package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/HerbHall/sentinel/internal/state"
)

type metrics struct {
	cpu   *prometheus.GaugeVec
	disk  *prometheus.GaugeVec
	ticks prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		cpu: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_asset_cpu_usage_percent",
			Help: "Simulated CPU usage of instrumented assets.",
		}, []string{"store", "asset"}),
		disk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentinel_asset_disk_usage_percent",
			Help: "Disk usage of instrumented assets.",
		}, []string{"store", "asset"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_telemetry_ticks_total",
			Help: "Number of completed simulator ticks.",
		}),
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.cpu, m.disk, m.ticks} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// observe replaces every gauge series with the readings in s, so that
// deleted stores and assets disappear from the exposition.
func (m *metrics) observe(s state.State) {
	m.cpu.Reset()
	m.disk.Reset()
	for _, st := range s.Stores {
		for _, a := range st.Assets {
			if !a.Instrumented() {
				continue
			}
			m.cpu.WithLabelValues(st.ID, a.ID).Set(float64(*a.CPUUsage))
			m.disk.WithLabelValues(st.ID, a.ID).Set(float64(*a.DiskUsage))
		}
	}
	m.ticks.Inc()
}
