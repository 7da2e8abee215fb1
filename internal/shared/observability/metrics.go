package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "steward_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ScopeBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "steward_scope_build_seconds",
		Help:    "Time spent building the scope tree and resolving usages for one file.",
		Buckets: prometheus.DefBuckets,
	})

	FilesAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steward_files_analyzed_total",
		Help: "Total number of files analyzed, by language.",
	}, []string{"language"})

	UsagesResolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steward_usages_resolved_total",
		Help: "Total number of identifier usages resolved to a binding.",
	})

	UnresolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steward_unresolved_total",
		Help: "Total number of identifier usages that resolved to no binding.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "steward_scan_seconds",
		Help:    "Time spent on a full codebase scan.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	ScanFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "steward_scan_files",
		Help: "Number of files covered by the most recent scan.",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steward_cache_hits_total",
		Help: "Total number of metric lookups served from the content-hash cache.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steward_cache_misses_total",
		Help: "Total number of metric lookups that required fresh analysis.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steward_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steward_http_requests_total",
		Help: "Total number of HTTP requests, by route and status code.",
	}, []string{"route", "code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "steward_http_request_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steward_rate_limited_total",
		Help: "Total number of HTTP requests rejected by the rate limiter.",
	})
)
