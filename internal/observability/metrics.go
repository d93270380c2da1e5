package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the explorer.
type Metrics struct {
	PageRenders    *prometheus.CounterVec // labels: page={explorer,geojson}
	RenderErrors   prometheus.Counter
	LeasesShown    prometheus.Histogram
	LeasesLoaded   prometheus.Gauge
	RenderDuration *prometheus.HistogramVec // labels: page
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leasemap",
			Name:      "page_renders_total",
			Help:      help("Pages rendered by the explorer, by page."),
		}, []string{"page"}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leasemap",
			Name:      "render_errors_total",
			Help:      help("Explorer renders that failed."),
		}),
		LeasesShown: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leasemap",
			Name:      "leases_shown",
			Help:      help("Leases left after filtering, per request."),
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		LeasesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leasemap",
			Name:      "leases_loaded",
			Help:      help("Leases held in memory by the explorer."),
		}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leasemap",
			Name:      "render_duration_seconds",
			Help:      help("Time spent filtering and rendering one response."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"page"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.PageRenders, m.RenderErrors, m.LeasesShown, m.LeasesLoaded, m.RenderDuration}
}

// NewMetrics creates and registers all explorer metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry registers the metrics with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
