package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
)

// AcceptOrderCommandHandler claims orders through the store's compare-and-swap.
type AcceptOrderCommandHandler struct {
	claims OrderClaimer
}

func NewAcceptOrderCommandHandler(claims OrderClaimer) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{claims: claims}
}

// Handle returns the accepted order. Losing the race yields
// *errs.ObjectConflictError; the caller should not retry.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.claims.Accept(ctx, cmd.CourierID(), cmd.OrderID())
}

// RejectOrderCommandHandler records rejections. Status and assignment are
// never touched.
type RejectOrderCommandHandler struct {
	claims OrderClaimer
}

func NewRejectOrderCommandHandler(claims OrderClaimer) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{claims: claims}
}

func (h RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.claims.Reject(ctx, cmd.CourierID(), cmd.OrderID())
}
