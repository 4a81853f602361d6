package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billinghub",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests sent to the billing backend by method and status.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billinghub",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of billing backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
