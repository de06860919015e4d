// Package metrics exports dispatch counters to Prometheus.
package metrics

import (
	"errors"

	"dispatch/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
)

var _ ports.DispatchMetrics = (*PromSink)(nil)

// PromSink implements ports.DispatchMetrics.
type PromSink struct {
	claims     *prometheus.CounterVec
	rejections *prometheus.CounterVec
	created    prometheus.Counter
	candidates prometheus.Histogram
	backlog    prometheus.Gauge
}

// NewPromSink registers the dispatch collectors on reg, or on the default
// registerer when reg is nil. Collectors that are already registered are
// reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &PromSink{
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_claims_total",
			Help: "Accept requests by outcome.",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_rejections_total",
			Help: "Reject requests by outcome.",
		}, []string{"outcome"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_orders_created_total",
			Help: "Orders created.",
		}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_order_candidates",
			Help:    "Candidate couriers found when an order is created.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		backlog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_pending_orders",
			Help: "Orders waiting for a courier.",
		}),
	}

	var err error
	if s.claims, err = register(reg, s.claims); err != nil {
		return nil, err
	}
	if s.rejections, err = register(reg, s.rejections); err != nil {
		return nil, err
	}
	if s.created, err = register(reg, s.created); err != nil {
		return nil, err
	}
	if s.candidates, err = register(reg, s.candidates); err != nil {
		return nil, err
	}
	if s.backlog, err = register(reg, s.backlog); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PromSink) ClaimAttempted(outcome string) {
	s.claims.WithLabelValues(outcome).Inc()
}

func (s *PromSink) RejectionAttempted(outcome string) {
	s.rejections.WithLabelValues(outcome).Inc()
}

func (s *PromSink) OrderCreated(candidates int) {
	s.created.Inc()
	s.candidates.Observe(float64(candidates))
}

func (s *PromSink) PendingBacklog(count int64) {
	s.backlog.Set(float64(count))
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
