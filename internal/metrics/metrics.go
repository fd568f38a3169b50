package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"side", "status"},
	)

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aggregator_quote_duration_seconds",
		Help:    "Quote request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	PathFills = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aggregator_path_fills",
		Help:    "Number of fills in the delivered path",
		Buckets: []float64{1, 2, 3, 4, 5, 7, 10},
	})

	Shortfalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggregator_partial_fills_total",
		Help: "Total number of quotes delivered with a liquidity shortfall",
	})

	// Sampling metrics
	SamplingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_sampling_failures_total",
			Help: "Sampling branches degraded to zero liquidity",
		},
		[]string{"branch"},
	)

	SamplerBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aggregator_sampler_batch_duration_seconds",
		Help:    "Batched sampler round-trip duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	SamplerSubCalls = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aggregator_sampler_sub_calls",
		Help:    "Number of sub-calls per sampler batch",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	// Gas oracle metrics
	GasOracleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggregator_gas_oracle_failures_total",
		Help: "Total number of failed gas oracle fetches",
	})

	GasPriceGwei = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aggregator_gas_price_gwei",
		Help: "Last committed fast gas price in gwei",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregator_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
