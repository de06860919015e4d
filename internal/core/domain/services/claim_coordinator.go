package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CourierGetter is the part of CourierRegistry the coordinator needs.
type CourierGetter interface {
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)
}

// ClaimCoordinator runs every order status change through the store's
// compare-and-swap. Of any number of concurrent Accept calls for one pending
// order, exactly one wins; the rest get *errs.ObjectConflictError and must not
// retry.
type ClaimCoordinator struct {
	couriers CourierGetter
	orders   ports.OrderRepository
	metrics  ports.DispatchMetrics
	logger   *slog.Logger
}

// NewClaimCoordinator creates a coordinator. metrics may be nil.
func NewClaimCoordinator(
	couriers CourierGetter,
	orders ports.OrderRepository,
	metrics ports.DispatchMetrics,
	logger *slog.Logger,
) *ClaimCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimCoordinator{
		couriers: couriers,
		orders:   orders,
		metrics:  metricsOrNop(metrics),
		logger:   logger.With("component", "ClaimCoordinator"),
	}
}

// Accept claims a pending order for the courier.
//
// Errors:
//   - *errs.ObjectNotFoundError when the courier or the order does not exist
//   - *errs.ObjectConflictError when the order is no longer pending
func (c *ClaimCoordinator) Accept(ctx context.Context, courierID, orderID kernel.UUID) (*order.Order, error) {
	if _, err := c.couriers.Get(ctx, courierID); err != nil {
		c.metrics.ClaimAttempted(outcomeOf(err))
		return nil, err
	}

	t, err := order.Accept(courierID)
	if err != nil {
		return nil, err
	}

	o, applied, err := c.orders.TransitionIfStatus(ctx, orderID, t)
	if err != nil {
		c.metrics.ClaimAttempted(outcomeOf(err))
		return nil, err
	}
	if !applied {
		c.metrics.ClaimAttempted(ports.OutcomeConflict)
		c.logger.InfoContext(ctx, "claim lost",
			"order_id", orderID.String(), "courier_id", courierID.String(), "status", o.Status().String())
		return nil, errs.NewObjectConflictErrorWithCause("order", orderID.String(),
			fmt.Errorf("order already %s", o.Status()))
	}

	c.metrics.ClaimAttempted(ports.OutcomeWon)
	c.logger.InfoContext(ctx, "order claimed", "order_id", orderID.String(), "courier_id", courierID.String())
	return o, nil
}

// Reject records that the courier declined a pending order. It never changes
// the order's status or assignment.
//
// Errors:
//   - *errs.ObjectNotFoundError when the courier does not exist, or the order
//     does not exist or is no longer pending
func (c *ClaimCoordinator) Reject(ctx context.Context, courierID, orderID kernel.UUID) (*order.Order, error) {
	if _, err := c.couriers.Get(ctx, courierID); err != nil {
		c.metrics.RejectionAttempted(outcomeOf(err))
		return nil, err
	}

	o, applied, err := c.orders.AddRejection(ctx, orderID, courierID)
	if err != nil {
		c.metrics.RejectionAttempted(outcomeOf(err))
		return nil, err
	}
	if !applied {
		c.metrics.RejectionAttempted(ports.OutcomeNotFound)
		return nil, errs.NewObjectNotFoundErrorWithCause("pending order", orderID.String(),
			fmt.Errorf("order is %s", o.Status()))
	}

	c.metrics.RejectionAttempted(ports.OutcomeApplied)
	return o, nil
}

// Advance moves an order forward to picked_up or delivered, or cancels it. The
// change is applied with compare-and-swap against the status read first, so it
// cannot overwrite a concurrent claim.
//
// Errors:
//   - *errs.ValueIsInvalidError when next is pending or accepted
//   - *errs.ObjectNotFoundError when the order does not exist
//   - *errs.ObjectConflictError when next is not reachable from the current
//     status, or the status changed while the request was in flight
func (c *ClaimCoordinator) Advance(ctx context.Context, orderID kernel.UUID, next order.Status) (*order.Order, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if next == order.Pending || next == order.Accepted {
		return nil, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s must be one of picked_up, delivered, cancelled", next))
	}

	current, err := c.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	t, err := order.NewTransition(current.Status(), next, nil)
	if err != nil {
		return nil, err
	}

	o, applied, err := c.orders.TransitionIfStatus(ctx, orderID, t)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, errs.NewObjectConflictErrorWithCause("order", orderID.String(),
			fmt.Errorf("status changed from %s to %s", current.Status(), o.Status()))
	}

	c.logger.InfoContext(ctx, "order status changed",
		"order_id", orderID.String(), "from", t.From().String(), "to", t.To().String())
	return o, nil
}

func outcomeOf(err error) string {
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ports.OutcomeNotFound
	}
	return ports.OutcomeError
}
