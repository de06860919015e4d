package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrListNearbyPendingOrdersQueryIsNotConstructed = errs.NewValueIsRequiredError(
	"ListNearbyPendingOrdersQuery must be created via NewListNearbyPendingOrdersQuery constructor",
)

// ListNearbyPendingOrdersQuery is a courier polling for work around its last
// reported location. MaxDistance is in meters; zero selects the default.
type ListNearbyPendingOrdersQuery struct {
	courierID   kernel.UUID
	maxDistance float64
	guard       guard.ConstructorGuard
}

func NewListNearbyPendingOrdersQuery(courierID kernel.UUID, maxDistance float64) (ListNearbyPendingOrdersQuery, error) {
	if err := courierID.Validate(); err != nil {
		return ListNearbyPendingOrdersQuery{}, errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	if err := kernel.ValidateSearchRadius(maxDistance); err != nil {
		return ListNearbyPendingOrdersQuery{}, err
	}
	return ListNearbyPendingOrdersQuery{
		courierID:   courierID,
		maxDistance: maxDistance,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (q ListNearbyPendingOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListNearbyPendingOrdersQueryIsNotConstructed)
}

func (q ListNearbyPendingOrdersQuery) CourierID() kernel.UUID {
	return q.courierID
}

func (q ListNearbyPendingOrdersQuery) MaxDistance() float64 {
	return q.maxDistance
}

// ListNearbyPendingOrdersQueryHandler resolves the courier's location and
// returns pending orders around it that the courier has not rejected, newest
// first.
type ListNearbyPendingOrdersQueryHandler struct {
	couriers CourierGetter
	orders   PendingOrderFinder
}

func NewListNearbyPendingOrdersQueryHandler(
	couriers CourierGetter,
	orders PendingOrderFinder,
) ListNearbyPendingOrdersQueryHandler {
	return ListNearbyPendingOrdersQueryHandler{couriers: couriers, orders: orders}
}

// Handle fails with *errs.ObjectNotFoundError for an unknown courier.
func (h ListNearbyPendingOrdersQueryHandler) Handle(
	ctx context.Context,
	q ListNearbyPendingOrdersQuery,
) ([]*order.Order, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	c, err := h.couriers.Get(ctx, q.CourierID())
	if err != nil {
		return nil, err
	}
	return h.orders.PendingNear(ctx, c, q.MaxDistance())
}
