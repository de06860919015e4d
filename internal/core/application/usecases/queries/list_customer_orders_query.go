package queries

import (
	"context"
	"strings"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// MaxCustomerOrders caps a customer's order history; it is also the default.
const MaxCustomerOrders = 200

var ErrListCustomerOrdersQueryIsNotConstructed = errs.NewValueIsRequiredError(
	"ListCustomerOrdersQuery must be created via NewListCustomerOrdersQuery constructor",
)

// ListCustomerOrdersQuery returns a customer's orders, newest first.
//
// Example:
//
//	q, err := NewListCustomerOrdersQuery("customer-1", 0) // up to MaxCustomerOrders
//	if err != nil {
//	    return err
//	}
//	history, err := handler.Handle(ctx, q)
type ListCustomerOrdersQuery struct {
	customerID string
	limit      int
	guard      guard.ConstructorGuard
}

// NewListCustomerOrdersQuery treats a zero limit as MaxCustomerOrders and
// clamps larger ones to it.
func NewListCustomerOrdersQuery(customerID string, limit int) (ListCustomerOrdersQuery, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return ListCustomerOrdersQuery{}, errs.NewValueIsRequiredError("customerId")
	}
	if limit < 0 {
		return ListCustomerOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxCustomerOrders)
	}
	if limit == 0 || limit > MaxCustomerOrders {
		limit = MaxCustomerOrders
	}
	return ListCustomerOrdersQuery{customerID: customerID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q ListCustomerOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListCustomerOrdersQueryIsNotConstructed)
}

func (q ListCustomerOrdersQuery) CustomerID() string {
	return q.customerID
}

func (q ListCustomerOrdersQuery) Limit() int {
	return q.limit
}

type ListCustomerOrdersQueryHandler struct {
	orders OrderReader
}

func NewListCustomerOrdersQueryHandler(orders OrderReader) ListCustomerOrdersQueryHandler {
	return ListCustomerOrdersQueryHandler{orders: orders}
}

func (h ListCustomerOrdersQueryHandler) Handle(ctx context.Context, q ListCustomerOrdersQuery) ([]*order.Order, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.orders.FindByCustomer(ctx, q.CustomerID(), q.Limit())
}
