package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - счетчики и гистограммы пайплайна обнаружения
type Metrics struct {
	CacheLookups     *prometheus.CounterVec   // labels: store={raw,ranked,search,city}, result={hit,miss}
	ProviderRequests *prometheus.CounterVec   // labels: provider={nominatim,overpass,scoring}, outcome={success,timeout,offline,parse_error,server_error}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	RankJobs         *prometheus.CounterVec   // labels: outcome={ranked,skipped,deduped,failed,degraded}
	RankJobsInFlight prometheus.Gauge
}

// NewMetrics создает метрики и регистрирует их в дефолтном реестре Prometheus
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.CacheLookups,
		m.ProviderRequests,
		m.ProviderDuration,
		m.RankJobs,
		m.RankJobsInFlight,
	)

	return m
}

// NewMetricsForTesting создает метрики без регистрации, чтобы параллельные
// тесты не падали на "already registered"
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by store and result.",
		}, []string{"store", "result"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "provider_requests_total",
			Help:      "Outbound provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "discovery",
			Name:      "provider_request_duration_seconds",
			Help:      "Provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"provider"}),
		RankJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "rank_jobs_total",
			Help:      "Background interest-ranking jobs by outcome.",
		}, []string{"outcome"}),
		RankJobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "discovery",
			Name:      "rank_jobs_in_flight",
			Help:      "Number of background ranking jobs currently running.",
		}),
	}
}
