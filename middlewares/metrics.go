package middlewares

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/kernel/internal"
	"github.com/dmitrymomot/kernel/pkg/cache"
)

// Route label values for requests that matched no Action.
const (
	RouteConventional = "conventional"
	RouteUnmatched    = "unmatched"
)

// MetricsConfig configures the Metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "kernel").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithMetricsConstLabels sets constant labels for all metrics.
func WithMetricsConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithMetricsBuckets sets the histogram buckets.
func WithMetricsBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithMetricsRegistry sets the registry the collectors are registered with.
func WithMetricsRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics records dispatch outcomes:
//
//   - kernel_requests_total{method,route,status}
//   - kernel_request_duration_seconds{method,route}
//
// route is the matched Action pattern, "conventional" for controller
// discovery, or "unmatched". Raw paths are never used as labels.
//
// It must be created once per registry; registering twice panics.
func Metrics(opts ...MetricsOption) internal.Middleware {
	cfg := MetricsConfig{
		Namespace: "kernel",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   cfg.Namespace,
		Name:        "requests_total",
		Help:        "Dispatched requests by method, route and status.",
		ConstLabels: cfg.ConstLabels,
	}, []string{"method", "route", "status"})
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   cfg.Namespace,
		Name:        "request_duration_seconds",
		Help:        "Time spent dispatching and rendering a request.",
		ConstLabels: cfg.ConstLabels,
		Buckets:     cfg.Buckets,
	}, []string{"method", "route"})

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil && !c.Written() {
				status = internal.StatusCodeOf(err)
			}
			method := c.Request().Method
			route := routeLabel(c)

			requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func routeLabel(c internal.Context) string {
	if p := internal.RoutePattern(c); p != "" {
		return p
	}
	if internal.ControllerName(c) != "" {
		return RouteConventional
	}
	return RouteUnmatched
}

// CacheCollector exports the hit and miss counters of a cache as
// kernel_cache_hits_total and kernel_cache_misses_total.
//
//	prometheus.MustRegister(middlewares.CacheCollector("routes", resolutions))
func CacheCollector(name string, stats cache.StatsReporter) prometheus.Collector {
	labels := prometheus.Labels{"cache": name}
	return &cacheCollector{
		stats: stats,
		hits: prometheus.NewDesc("kernel_cache_hits_total",
			"Cache lookups that found a value.", nil, labels),
		misses: prometheus.NewDesc("kernel_cache_misses_total",
			"Cache lookups that found nothing.", nil, labels),
	}
}

type cacheCollector struct {
	stats  cache.StatsReporter
	hits   *prometheus.Desc
	misses *prometheus.Desc
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
}
