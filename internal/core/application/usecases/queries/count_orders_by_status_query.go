package queries

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCountOrdersByStatusQueryIsNotConstructed = errs.NewValueIsRequiredError(
	"CountOrdersByStatusQuery must be created via NewCountOrdersByStatusQuery constructor",
)

// CountOrdersByStatusQuery counts the orders currently in one status.
type CountOrdersByStatusQuery struct {
	status order.Status
	guard  guard.ConstructorGuard
}

func NewCountOrdersByStatusQuery(status order.Status) (CountOrdersByStatusQuery, error) {
	if err := status.Validate(); err != nil {
		return CountOrdersByStatusQuery{}, err
	}
	return CountOrdersByStatusQuery{status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q CountOrdersByStatusQuery) Validate() error {
	return q.guard.Validate(ErrCountOrdersByStatusQueryIsNotConstructed)
}

func (q CountOrdersByStatusQuery) Status() order.Status {
	return q.status
}

type CountOrdersByStatusQueryHandler struct {
	orders OrderCounter
}

func NewCountOrdersByStatusQueryHandler(orders OrderCounter) CountOrdersByStatusQueryHandler {
	return CountOrdersByStatusQueryHandler{orders: orders}
}

func (h CountOrdersByStatusQueryHandler) Handle(ctx context.Context, q CountOrdersByStatusQuery) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return h.orders.CountByStatus(ctx, q.Status())
}
