package inventory

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/pkg/models"
)

type metrics struct {
	stores prometheus.GaugeFunc
	assets *assetCollector
}

func newMetrics(c *state.Container) *metrics {
	return &metrics{
		stores: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "sentinel_inventory_stores",
			Help: "Number of registered stores.",
		}, func() float64 {
			return float64(len(c.Snapshot().Stores))
		}),
		assets: &assetCollector{
			state: c,
			desc: prometheus.NewDesc(
				"sentinel_inventory_assets",
				"Number of registered assets by type and status.",
				[]string{"type", "status"}, nil,
			),
		},
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.stores, m.assets} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// assetCollector counts assets at scrape time so deleted stores never leave
// stale series behind.
type assetCollector struct {
	state *state.Container
	desc  *prometheus.Desc
}

func (c *assetCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *assetCollector) Collect(ch chan<- prometheus.Metric) {
	type key struct {
		typ    models.AssetType
		status models.Status
	}
	counts := make(map[key]int)
	for _, a := range c.state.Snapshot().AllAssets() {
		counts[key{a.Type, a.Status}]++
	}
	for k, n := range counts {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), string(k.typ), string(k.status))
	}
}
