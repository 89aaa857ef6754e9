// Package metrics exports scgraph activity as Prometheus metrics.
//
// A [Registry] implements every hook interface of
// [github.com/matzehuels/scgraph/pkg/observability]. Install it once at
// startup and serve [Registry.Handler] on /metrics:
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	router.Handle("/metrics", reg.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/scgraph/pkg/observability"
)

const namespace = "scgraph"

// Registry holds the collectors and the Prometheus registry they live in.
type Registry struct {
	// Layout
	LayoutsStarted  prometheus.Counter
	LayoutsTotal    *prometheus.CounterVec
	LayoutTicks     prometheus.Histogram
	LayoutDuration  prometheus.Histogram
	LayoutVertices  prometheus.Gauge
	LayoutLinks     prometheus.Gauge
	LayoutAlpha     prometheus.Gauge
	LayoutsInFlight prometheus.Gauge

	// Ingest
	EventsApplied  *prometheus.CounterVec
	IngestPasses   prometheus.Histogram
	IngestDuration prometheus.Histogram

	// Cache
	CacheRequests *prometheus.CounterVec
	CacheSetBytes *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all collectors registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(r.registry)

	r.LayoutsStarted = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layouts_started_total",
		Help:      "Layout runs started",
	})
	r.LayoutsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layouts_total",
		Help:      "Layout runs finished, by result",
	}, []string{"result"})
	r.LayoutTicks = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_ticks",
		Help:      "Ticks simulated per layout run",
		Buckets:   []float64{10, 50, 100, 200, 300, 400, 600},
	})
	r.LayoutDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_duration_seconds",
		Help:      "Wall time of a layout run",
		Buckets:   prometheus.DefBuckets,
	})
	r.LayoutVertices = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layout_vertices",
		Help:      "Vertices in the most recently started layout",
	})
	r.LayoutLinks = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layout_links",
		Help:      "Links in the most recently started layout",
	})
	r.LayoutAlpha = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layout_alpha",
		Help:      "Alpha after the most recent tick",
	})
	r.LayoutsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layouts_in_flight",
		Help:      "Layout runs currently simulating",
	})

	r.EventsApplied = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_applied_total",
		Help:      "Producer events applied to a scene, by result",
	}, []string{"result"})
	r.IngestPasses = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_passes",
		Help:      "Dependency passes needed per batch of events",
		Buckets:   []float64{1, 2, 3, 5, 8, 13},
	})
	r.IngestDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Time to apply a batch of events",
		Buckets:   prometheus.DefBuckets,
	})

	r.CacheRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups, by backend and result",
	}, []string{"backend", "result"})
	r.CacheSetBytes = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_set_bytes_total",
		Help:      "Bytes written to the cache, by backend",
	}, []string{"backend"})

	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	r.HTTPRequestsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests being served",
	})

	return r
}

// Gatherer returns the underlying Prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the process-wide hook implementation for layout,
// ingest, cache and HTTP events.
func (r *Registry) Install() {
	observability.SetLayoutHooks(r)
	observability.SetIngestHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

// =============================================================================
// Hooks
// =============================================================================

func (r *Registry) OnLayoutStart(_ context.Context, vertices, links int) {
	r.LayoutsStarted.Inc()
	r.LayoutsInFlight.Inc()
	r.LayoutVertices.Set(float64(vertices))
	r.LayoutLinks.Set(float64(links))
}

func (r *Registry) OnLayoutTick(_ context.Context, alpha float64) {
	r.LayoutAlpha.Set(alpha)
}

func (r *Registry) OnLayoutComplete(_ context.Context, ticks int, d time.Duration, err error) {
	r.LayoutsInFlight.Dec()
	r.LayoutsTotal.WithLabelValues(result(err)).Inc()
	r.LayoutTicks.Observe(float64(ticks))
	r.LayoutDuration.Observe(d.Seconds())
}

func (r *Registry) OnEventsApplied(_ context.Context, applied, passes int, d time.Duration, err error) {
	r.EventsApplied.WithLabelValues(result(err)).Add(float64(applied))
	r.IngestPasses.Observe(float64(passes))
	r.IngestDuration.Observe(d.Seconds())
}

func (r *Registry) OnCacheHit(_ context.Context, backend string) {
	r.CacheRequests.WithLabelValues(backend, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, backend string) {
	r.CacheRequests.WithLabelValues(backend, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, backend string, size int) {
	r.CacheSetBytes.WithLabelValues(backend).Add(float64(size))
}

func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

func (r *Registry) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.LayoutHooks = (*Registry)(nil)
	_ observability.IngestHooks = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
	_ observability.HTTPHooks   = (*Registry)(nil)
)
