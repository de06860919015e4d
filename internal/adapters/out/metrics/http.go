package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRecorder counts served requests and their latency, labelled by route
// pattern rather than raw path.
type HTTPRecorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPRecorder(reg prometheus.Registerer) (*HTTPRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &HTTPRecorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	var err error
	if r.requests, err = register(reg, r.requests); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *HTTPRecorder) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	r.requests.WithLabelValues(method, path, code).Inc()
	r.duration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}
