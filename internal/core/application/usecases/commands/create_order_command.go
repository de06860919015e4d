package commands

import (
	"errors"
	"slices"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateOrderCommandIsNotConstructed = errs.NewValueIsRequiredError(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand places a new delivery order. MaxDistance is the radius in
// meters for the candidate courier search; zero selects the default.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "customer-1", pickup, dropoff,
//	    items, decimal.RequireFromString("120.50"), order.Cash, 0)
//	if err != nil {
//	    return fmt.Errorf("invalid order: %w", err)
//	}
//	result, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	customerID    string
	pickup        order.Place
	dropoff       order.Place
	items         []order.Item
	totalAmount   decimal.Decimal
	paymentMethod order.PaymentMethod
	maxDistance   float64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand checks the request-level fields; the order itself is
// validated again when the aggregate is built.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID string,
	pickup order.Place,
	dropoff order.Place,
	items []order.Item,
	totalAmount decimal.Decimal,
	paymentMethod order.PaymentMethod,
	maxDistance float64,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		pickup:        pickup,
		dropoff:       dropoff,
		items:         slices.Clone(items),
		totalAmount:   totalAmount,
		paymentMethod: paymentMethod,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setMaxDistance(maxDistance),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CustomerID() string {
	return c.customerID
}

func (c CreateOrderCommand) Pickup() order.Place {
	return c.pickup
}

func (c CreateOrderCommand) Dropoff() order.Place {
	return c.dropoff
}

func (c CreateOrderCommand) Items() []order.Item {
	return slices.Clone(c.items)
}

func (c CreateOrderCommand) TotalAmount() decimal.Decimal {
	return c.totalAmount
}

func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

// MaxDistance is the candidate search radius in meters, zero for the default.
func (c CreateOrderCommand) MaxDistance() float64 {
	return c.maxDistance
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerId")
	}

	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setMaxDistance(maxDistance float64) error {
	if err := kernel.ValidateSearchRadius(maxDistance); err != nil {
		return err
	}

	c.maxDistance = maxDistance
	return nil
}
