// Package metrics owns the Prometheus collectors shared by the search
// service, the artifact cache, the embedder breaker and the analytics
// publisher.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	stageBuckets   = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
)

type Metrics struct {
	// HTTP surface, labelled by route pattern.
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Query pipeline, labelled by variant.
	SearchQueriesTotal *prometheus.CounterVec
	SearchLatency      *prometheus.HistogramVec
	StageDuration      *prometheus.HistogramVec
	StageCandidates    *prometheus.HistogramVec
	SearchResultsCount *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	ArtifactLoadsTotal   *prometheus.CounterVec
	ArtifactLoadDuration *prometheus.HistogramVec

	// CircuitBreakerState holds resilience.State as a float.
	CircuitBreakerState *prometheus.GaugeVec
	EventsPublished     *prometheus.CounterVec
}

// New registers the collectors with the process-wide registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg. Registering twice with
// the same registry panics.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := factory{reg: reg}
	return &Metrics{
		HTTPRequestsTotal: f.counter("http_requests_total",
			"HTTP requests served, by method, route and status code.", "method", "path", "status"),
		HTTPRequestDuration: f.histogram("http_request_duration_seconds",
			"HTTP handling time.", []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}, "method", "path"),
		HTTPRequestsInFlight: f.gauge("http_requests_in_flight",
			"HTTP requests being handled right now."),

		SearchQueriesTotal: f.counter("search_queries_total",
			"Searches run, by variant and outcome (ok, empty, error).", "variant", "outcome"),
		SearchLatency: f.histogram("search_latency_seconds",
			"Search latency seen by the client, by variant and cache status.", latencyBuckets, "variant", "cache_status"),
		StageDuration: f.histogram("search_stage_duration_seconds",
			"Time spent per pipeline stage.", stageBuckets, "variant", "stage"),
		StageCandidates: f.histogram("search_stage_candidates",
			"Candidates left after each retrieval filter.", []float64{0, 1, 10, 100, 200, 1000, 10000, 100000}, "variant", "stage"),
		SearchResultsCount: f.histogram("search_results_count",
			"Results returned per search.", []float64{0, 1, 2, 5, 10}, "variant"),

		CacheHitsTotal:   f.plainCounter("cache_hits_total", "Search responses served from Redis."),
		CacheMissesTotal: f.plainCounter("cache_misses_total", "Search responses computed after a cache miss."),

		ArtifactLoadsTotal: f.counter("artifact_loads_total",
			"Artifact reads, by kind and outcome (loaded, cached, error).", "kind", "outcome"),
		ArtifactLoadDuration: f.histogram("artifact_load_duration_seconds",
			"Time to read and decode one artifact.", prometheus.ExponentialBuckets(0.001, 4, 8), "kind"),

		CircuitBreakerState: f.gaugeVec("circuit_breaker_state",
			"Breaker state per dependency: 0 closed, 1 open, 2 half-open.", "name"),
		EventsPublished: f.counter("analytics_events_published_total",
			"Search events handed to Kafka, by status.", "status"),
	}
}

// factory creates collectors already registered with reg.
type factory struct {
	reg prometheus.Registerer
}

func (f factory) counter(name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	f.reg.MustRegister(c)
	return c
}

func (f factory) plainCounter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	f.reg.MustRegister(c)
	return c
}

func (f factory) histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	f.reg.MustRegister(h)
	return h
}

func (f factory) gauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	f.reg.MustRegister(g)
	return g
}

func (f factory) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	f.reg.MustRegister(g)
	return g
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
