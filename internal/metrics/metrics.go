// Package metrics exposes Prometheus instrumentation for the watch
// daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the daemon's metrics.
type Collector struct {
	registry *prometheus.Registry

	usagePublished  prometheus.Counter
	publishFailures prometheus.Counter
	anomaliesSeen   prometheus.Counter
	lastConsumption prometheus.Gauge
	digestRuns      prometheus.Counter
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		usagePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wattwise",
			Name:      "usage_records_published_total",
			Help:      "Daily usage records successfully published.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wattwise",
			Name:      "publish_failures_total",
			Help:      "Publish attempts that failed.",
		}),
		anomaliesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wattwise",
			Name:      "anomalous_days_total",
			Help:      "Published days flagged as anomalous.",
		}),
		lastConsumption: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wattwise",
			Name:      "last_daily_consumption_kwh",
			Help:      "Consumption of the most recently published day.",
		}),
		digestRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wattwise",
			Name:      "digest_runs_total",
			Help:      "Scheduled digest executions.",
		}),
	}

	registry.MustRegister(c.usagePublished, c.publishFailures, c.anomaliesSeen, c.lastConsumption, c.digestRuns)
	return c
}

// RecordPublished records one successfully published usage record.
func (c *Collector) RecordPublished(consumptionKWh float64, isAnomaly bool) {
	c.usagePublished.Inc()
	c.lastConsumption.Set(consumptionKWh)
	if isAnomaly {
		c.anomaliesSeen.Inc()
	}
}

// RecordPublishFailure records a failed publish attempt.
func (c *Collector) RecordPublishFailure() {
	c.publishFailures.Inc()
}

// RecordDigestRun records one scheduled digest execution.
func (c *Collector) RecordDigestRun() {
	c.digestRuns.Inc()
}

// Handler returns the HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
