package api

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts outbound requests by outcome. Optional: a nil *Metrics on the
// client disables instrumentation.
type Metrics struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics builds and registers the client collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aquaflow_client_requests_total",
			Help: "Outbound API requests by method and path.",
		}, []string{"method", "path"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aquaflow_client_request_failures_total",
			Help: "Failed API requests by error kind.",
		}, []string{"method", "path", "kind"}),
	}
	reg.MustRegister(m.requests, m.failures)
	return m
}

func (m *Metrics) observe(method, path string, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path).Inc()
	if err == nil {
		return
	}
	kind := "other"
	switch {
	case IsTimeout(err):
		kind = "timeout"
	case IsNetwork(err):
		kind = "network"
	case StatusOf(err) != 0:
		kind = "http"
	}
	m.failures.WithLabelValues(method, path, kind).Inc()
}
