package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
)

// SetOrderStatusCommandHandler applies lifecycle changes after the claim.
type SetOrderStatusCommandHandler struct {
	orders OrderAdvancer
}

func NewSetOrderStatusCommandHandler(orders OrderAdvancer) SetOrderStatusCommandHandler {
	return SetOrderStatusCommandHandler{orders: orders}
}

// Handle returns the updated order. An illegal transition, or a status that
// changed concurrently, is an *errs.ObjectConflictError.
func (h SetOrderStatusCommandHandler) Handle(ctx context.Context, cmd SetOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.orders.Advance(ctx, cmd.OrderID(), cmd.Status())
}
