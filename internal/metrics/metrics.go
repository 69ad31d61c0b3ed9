package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campusfeed"

// Ranking outcomes.
const (
	RankingRanked  = "ranked"
	RankingEmpty   = "empty"
	RankingFailed  = "failed"
	RankingTimeout = "timeout"
)

// Collector owns every service metric on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	enrichment      *prometheus.CounterVec
	ranking         *prometheus.CounterVec
	rankingDuration prometheus.Histogram
	guardDecisions  *prometheus.CounterVec
	ingestedItems   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the collectors, plus Go runtime and process metrics.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		enrichment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_items_total",
			Help:      "Items processed by the enrichment worker, by outcome status.",
		}, []string{"status"}),
		ranking: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_requests_total",
			Help:      "Personalized ranking attempts, by outcome.",
		}, []string{"outcome"}),
		rankingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Wall time spent waiting for a ranking result.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 2.5, 3},
		}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_guard_decisions_total",
			Help:      "Decisions taken by the ingestion guard.",
		}, []string{"decision"}),
		ingestedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_items_total",
			Help:      "Items persisted by ingestion runs, by type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.enrichment,
		c.ranking,
		c.rankingDuration,
		c.guardDecisions,
		c.ingestedItems,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) ObserveEnrichment(status string) {
	if c == nil {
		return
	}
	c.enrichment.WithLabelValues(status).Inc()
}

func (c *Collector) ObserveRanking(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.ranking.WithLabelValues(outcome).Inc()
	c.rankingDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ObserveGuard(decision string) {
	if c == nil {
		return
	}
	c.guardDecisions.WithLabelValues(decision).Inc()
}

func (c *Collector) ObserveIngested(itemType string) {
	if c == nil {
		return
	}
	c.ingestedItems.WithLabelValues(itemType).Inc()
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
