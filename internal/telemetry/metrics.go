// Package telemetry exposes login history and dashboard traffic as
// Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/wifiauth/internal/model"
)

const namespace = "wifiauth"

var (
	// HTTPRequests counts dashboard requests.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of dashboard HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	attemptsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "login_attempts_total"),
		"Total number of recorded login attempts",
		[]string{"network"}, nil,
	)
	successesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "login_successes_total"),
		"Total number of recorded successful login attempts",
		[]string{"network"}, nil,
	)
	lastAttemptDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "last_attempt_timestamp_seconds"),
		"Unix time of the most recent login attempt",
		[]string{"network"}, nil,
	)
)

// StatsSource provides per network totals.
type StatsSource interface {
	AggregateByNetwork() ([]model.NetworkStats, error)
}

// AttemptCollector reads the attempt log on every scrape.
type AttemptCollector struct {
	source StatsSource
}

// NewAttemptCollector creates a collector over source.
func NewAttemptCollector(source StatsSource) *AttemptCollector {
	return &AttemptCollector{source: source}
}

// Describe implements prometheus.Collector.
func (c *AttemptCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- attemptsDesc
	ch <- successesDesc
	ch <- lastAttemptDesc
}

// Collect implements prometheus.Collector.
func (c *AttemptCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.source.AggregateByNetwork()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(attemptsDesc, err)
		return
	}

	for _, ns := range stats {
		label := ns.DisplayName()
		ch <- prometheus.MustNewConstMetric(attemptsDesc, prometheus.CounterValue,
			float64(ns.TotalAttempts), label)
		ch <- prometheus.MustNewConstMetric(successesDesc, prometheus.CounterValue,
			float64(ns.SuccessfulAttempts), label)
		if !ns.LastAttempt.IsZero() {
			ch <- prometheus.MustNewConstMetric(lastAttemptDesc, prometheus.GaugeValue,
				float64(ns.LastAttempt.Unix()), label)
		}
	}
}

// NewRegistry returns a registry with the attempt collector, the request
// counter and the Go runtime collectors.
func NewRegistry(source StatsSource) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewAttemptCollector(source),
		HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
