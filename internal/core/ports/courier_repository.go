package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository persists Courier aggregates and answers proximity queries
// over their last known location.
type CourierRepository interface {
	// Add stores a new courier. A courier whose id or phone already exists is
	// reported as *errs.ObjectConflictError.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update overwrites an existing courier. Unknown ids are reported as
	// *errs.ObjectNotFoundError.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get returns the courier with the given id or *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// FindByPhone returns the courier registered under phone or
	// *errs.ObjectNotFoundError.
	FindByPhone(ctx context.Context, phone string) (*courier.Courier, error)

	// FindAvailableNear returns up to limit available couriers within
	// radiusMeters of center, nearest first.
	FindAvailableNear(
		ctx context.Context,
		center kernel.GeoPoint,
		radiusMeters float64,
		limit int,
	) ([]*courier.Courier, error)
}

// CourierLocator is an optional secondary index of available courier positions.
// It may lag behind the repository, so callers confirm its answers there.
type CourierLocator interface {
	// Track records the courier's position.
	Track(ctx context.Context, id kernel.UUID, location kernel.GeoPoint) error

	// Forget drops the courier from the index.
	Forget(ctx context.Context, id kernel.UUID) error

	// Nearby returns up to limit courier ids within radiusMeters of center,
	// nearest first.
	Nearby(ctx context.Context, center kernel.GeoPoint, radiusMeters float64, limit int) ([]kernel.UUID, error)
}
