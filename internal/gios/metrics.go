package gios

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "airquality_"

	resultSuccess      = "success"
	resultNetworkError = "network_error"
	resultStatusError  = "status_error"
	resultParseError   = "parse_error"
)

// Metrics counts API calls per endpoint. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the API metrics and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "api_requests_total",
				Help: "Total GIOS API requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "api_request_duration_seconds",
				Help:    "GIOS API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *Metrics) observe(endpoint, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, result).Inc()
	m.latency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
