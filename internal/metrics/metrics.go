package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Swap attempt metrics
	SwapAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onesol_swap_attempts_total",
			Help: "Total number of swap attempts by outcome",
		},
		[]string{"outcome"},
	)

	SwapTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onesol_swap_transactions_total",
			Help: "Total number of swap transactions submitted, by status",
		},
		[]string{"status"},
	)

	ConfirmationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "onesol_confirmation_duration_seconds",
		Help:    "Time from submission to confirmed signature",
		Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30},
	})

	// Venue metrics
	VenueBuildFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onesol_venue_build_failures_total",
			Help: "Instruction build failures by venue kind",
		},
		[]string{"venue"},
	)

	VenueCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "onesol_venue_count",
		Help: "Total number of venues known to the registry",
	})

	// Account resolution metrics
	AccountsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onesol_accounts_created_total",
			Help: "Program accounts created during setup, by purpose",
		},
		[]string{"purpose"},
	)

	AccountCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onesol_account_cache_hits_total",
		Help: "Total number of account resolution cache hits",
	})

	AccountCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onesol_account_cache_misses_total",
		Help: "Total number of account resolution cache misses",
	})

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onesol_quote_requests_total",
			Help: "Total number of pricing-service quote requests",
		},
		[]string{"status"},
	)

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "onesol_quote_duration_seconds",
		Help:    "Pricing-service quote request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onesol_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onesol_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
