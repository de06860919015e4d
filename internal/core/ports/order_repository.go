package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository persists Order aggregates. TransitionIfStatus and
// AddRejection are the only ways an order changes after Add, and both are
// atomic with respect to every other caller sharing the same store.
type OrderRepository interface {
	// Add stores a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get returns the order with the given id or *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// TransitionIfStatus applies t only if the stored status still equals
	// t.From(). applied is false, with the current order and a nil error, when
	// the status had already moved on. Unknown ids are *errs.ObjectNotFoundError.
	TransitionIfStatus(ctx context.Context, id kernel.UUID, t order.Transition) (*order.Order, bool, error)

	// AddRejection adds courierID to the order's rejection set while the order is
	// pending. Repeating it is harmless. applied is false when the order is no
	// longer pending; unknown ids are *errs.ObjectNotFoundError.
	AddRejection(ctx context.Context, id kernel.UUID, courierID kernel.UUID) (*order.Order, bool, error)

	// FindPendingNear returns up to limit pending orders whose pickup lies within
	// radiusMeters of center and that excludeRejectedBy has not rejected, newest
	// first.
	FindPendingNear(
		ctx context.Context,
		center kernel.GeoPoint,
		radiusMeters float64,
		excludeRejectedBy kernel.UUID,
		limit int,
	) ([]*order.Order, error)

	// FindByCustomer returns up to limit of the customer's orders, newest first.
	FindByCustomer(ctx context.Context, customerID string, limit int) ([]*order.Order, error)

	// CountByStatus returns how many orders are currently in status.
	CountByStatus(ctx context.Context, status order.Status) (int64, error)
}
