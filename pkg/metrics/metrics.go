// Package metrics exposes Prometheus instrumentation for the dispatch core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes.
const (
	OutcomeBusy         = "busy"
	OutcomeHit          = "hit"
	OutcomeMiss         = "miss"
	OutcomeError        = "error"
	OutcomeUnauthorized = "unauthorized"
)

// Token refresh results.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
)

// Collector holds the gateway metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	dispatchTotal     *prometheus.CounterVec
	tokenRefreshTotal *prometheus.CounterVec
	cacheEntries      prometheus.Gauge
	upstreamDuration  *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewCollector creates a collector on its own registry.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.NewRegistry())
}

// NewCollectorWithRegistry creates a collector registered on registry.
func NewCollectorWithRegistry(registry *prometheus.Registry) *Collector {
	factory := promauto.With(registry)
	return &Collector{
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miurev_dispatch_total",
				Help: "Total number of dispatched catalog requests by outcome",
			},
			[]string{"outcome"},
		),
		tokenRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miurev_token_refresh_total",
				Help: "Total number of access token acquisitions by result",
			},
			[]string{"result"},
		),
		cacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "miurev_cache_entries",
				Help: "Current number of entries in the in-memory response cache",
			},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "miurev_upstream_duration_seconds",
				Help:    "Duration of upstream catalog calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		registry: registry,
	}
}

// RecordDispatch counts one Execute call.
func (c *Collector) RecordDispatch(outcome string) {
	if c == nil {
		return
	}
	c.dispatchTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenRefresh counts one token acquisition attempt.
func (c *Collector) RecordTokenRefresh(result string) {
	if c == nil {
		return
	}
	c.tokenRefreshTotal.WithLabelValues(result).Inc()
}

// SetCacheEntries reports the current cache size.
func (c *Collector) SetCacheEntries(n int) {
	if c == nil {
		return
	}
	c.cacheEntries.Set(float64(n))
}

// ObserveUpstream records the latency of one upstream call. A status of 0
// means the call failed before a response arrived.
func (c *Collector) ObserveUpstream(status int, duration time.Duration) {
	if c == nil {
		return
	}
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.upstreamDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
