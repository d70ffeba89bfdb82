package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "travel_collector"

// Metrics holds the Prometheus counters, histograms, and gauges for a collection run.
type Metrics struct {
	RowsCollected    prometheus.Counter
	Failures         *prometheus.CounterVec // labels: stage={geocode,weather,trends}
	BaselineScores   prometheus.Counter
	ConfigGaps       prometheus.Counter
	RunsStopped      *prometheus.CounterVec // labels: reason
	CollectorRunning prometheus.Gauge

	// Collaborator metrics.
	RequestDuration *prometheus.HistogramVec // labels: collaborator={geocoder,weather,trends}
	Cache           *prometheus.CounterVec   // labels: cache={geocode,response}, result={hit,miss}
	WeatherRetries  prometheus.Counter
	RowsPublished   prometheus.Counter
}

// NewMetrics creates and registers all collector metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsCollected,
		m.Failures,
		m.BaselineScores,
		m.ConfigGaps,
		m.RunsStopped,
		m.CollectorRunning,
		m.RequestDuration,
		m.Cache,
		m.WeatherRetries,
		m.RowsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_collected_total",
			Help:      "Dataset rows appended by the collector.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Collaborator failures counted against the failure ceiling, by stage.",
		}, []string{"stage"}),
		BaselineScores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_baseline_total",
			Help:      "Trend lookups that carried no regional signal and used the baseline score.",
		}),
		ConfigGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_gaps_total",
			Help:      "Requested seasons missing from a country calendar.",
		}),
		RunsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_stopped_total",
			Help:      "Collection runs by stop reason.",
		}, []string{"reason"}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while a collection run is in progress.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Collaborator call duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"collaborator"}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		WeatherRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_retries_total",
			Help:      "Weather API attempts retried after a transient failure.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_published_total",
			Help:      "Rows written to the Kafka sink.",
		}),
	}
}
