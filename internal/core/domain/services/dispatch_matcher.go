package services

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// Defaults used when MatcherSettings leaves a field at zero.
const (
	DefaultRadiusMeters   = 5000.0
	DefaultCandidateLimit = 20
	DefaultPollingLimit   = 30
)

// MatcherSettings tunes DispatchMatcher.
type MatcherSettings struct {
	// RadiusMeters applies when a request does not choose its own radius.
	RadiusMeters float64
	// CandidateLimit caps the couriers returned with a new order.
	CandidateLimit int
	// PollingLimit caps the pending orders returned to a polling courier.
	PollingLimit int
}

// CourierFinder is the part of CourierRegistry the matcher needs.
type CourierFinder interface {
	FindAvailableNear(ctx context.Context, center kernel.GeoPoint, radiusMeters float64, limit int) ([]*courier.Courier, error)
}

// DispatchMatcher pairs orders with nearby couriers. Its answers are advisory:
// nothing is reserved, and a listed order may already be claimed by the time
// the courier acts on it.
type DispatchMatcher struct {
	couriers CourierFinder
	orders   ports.OrderRepository
	settings MatcherSettings
	logger   *slog.Logger
}

// NewDispatchMatcher fills zero settings with the package defaults.
func NewDispatchMatcher(
	couriers CourierFinder,
	orders ports.OrderRepository,
	settings MatcherSettings,
	logger *slog.Logger,
) *DispatchMatcher {
	if settings.RadiusMeters <= 0 {
		settings.RadiusMeters = DefaultRadiusMeters
	}
	if settings.CandidateLimit <= 0 {
		settings.CandidateLimit = DefaultCandidateLimit
	}
	if settings.PollingLimit <= 0 {
		settings.PollingLimit = DefaultPollingLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchMatcher{
		couriers: couriers,
		orders:   orders,
		settings: settings,
		logger:   logger.With("component", "DispatchMatcher"),
	}
}

// Settings returns the effective settings.
func (m *DispatchMatcher) Settings() MatcherSettings {
	return m.settings
}

// Candidates returns available couriers near the order's pickup, nearest
// first. A zero radius selects the configured default.
func (m *DispatchMatcher) Candidates(ctx context.Context, o *order.Order, radiusMeters float64) ([]*courier.Courier, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	radius, err := m.radius(radiusMeters)
	if err != nil {
		return nil, err
	}

	found, err := m.couriers.FindAvailableNear(ctx, o.Pickup().Geo(), radius, m.settings.CandidateLimit)
	if err != nil {
		return nil, err
	}

	m.logger.DebugContext(ctx, "candidate couriers computed",
		"order_id", o.ID().String(), "radius_m", radius, "candidates", len(found))
	return found, nil
}

// PendingNear returns the pending orders around the courier's last location
// that the courier has not rejected, newest first. A zero radius selects the
// configured default.
func (m *DispatchMatcher) PendingNear(ctx context.Context, c *courier.Courier, radiusMeters float64) ([]*order.Order, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	radius, err := m.radius(radiusMeters)
	if err != nil {
		return nil, err
	}

	return m.orders.FindPendingNear(ctx, c.Location(), radius, c.ID(), m.settings.PollingLimit)
}

func (m *DispatchMatcher) radius(requested float64) (float64, error) {
	if err := kernel.ValidateSearchRadius(requested); err != nil {
		return 0, err
	}
	if requested == 0 {
		return m.settings.RadiusMeters, nil
	}
	return requested, nil
}
