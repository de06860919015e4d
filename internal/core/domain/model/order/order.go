package order

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrOrderIsNotConstructed is returned when an Order was not created through
// NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is a delivery request placed by a customer. It is the aggregate root
// whose status and assigned courier are the only fields that change after
// creation.
//
// Order follows these invariants:
//   - Has a valid identifier and a non-empty customer id
//   - Pickup and dropoff both carry a valid geo point
//   - Total amount is present and not negative
//   - The assigned courier is set if and only if status is accepted, picked_up or delivered
//   - rejectedBy is a set: each courier appears at most once
type Order struct {
	id            kernel.UUID
	customerID    string
	pickup        Place
	dropoff       Place
	items         []Item
	totalAmount   decimal.Decimal
	paymentMethod PaymentMethod
	status        Status
	courierID     *kernel.UUID
	rejectedBy    []kernel.UUID
	createdAt     time.Time
	updatedAt     time.Time
	guard         guard.ConstructorGuard
}

// NewOrder creates a pending order with no courier and an empty rejection set.
//
// Example:
//
//	pickupGeo, _ := kernel.NewGeoPoint(77.209, 28.6139)
//	pickup, _ := order.NewPlace("pickup", "Main gate", pickupGeo)
//	o, err := order.NewOrder(kernel.NewUUID(), "customer-1", pickup, dropoff,
//	    items, decimal.NewFromInt(120), order.Cash, time.Now())
func NewOrder(
	id kernel.UUID,
	customerID string,
	pickup Place,
	dropoff Place,
	items []Item,
	totalAmount decimal.Decimal,
	paymentMethod PaymentMethod,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:     Pending,
		rejectedBy: make([]kernel.UUID, 0),
		createdAt:  now.UTC(),
		updatedAt:  now.UTC(),
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setPickup(pickup),
		o.setDropoff(dropoff),
		o.setItems(items),
		o.setTotalAmount(totalAmount),
		o.setPaymentMethod(paymentMethod),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an Order from persisted state, enforcing the same
// invariants as NewOrder plus the courier/status consistency rule.
func RestoreOrder(
	id kernel.UUID,
	customerID string,
	pickup Place,
	dropoff Place,
	items []Item,
	totalAmount decimal.Decimal,
	paymentMethod PaymentMethod,
	status Status,
	courierID *kernel.UUID,
	rejectedBy []kernel.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		createdAt: createdAt.UTC(),
		updatedAt: updatedAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setPickup(pickup),
		o.setDropoff(dropoff),
		o.setItems(items),
		o.setTotalAmount(totalAmount),
		o.setPaymentMethod(paymentMethod),
		o.setStatusAndCourier(status, courierID),
		o.setRejectedBy(rejectedBy),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate fails for a nil or zero-value Order.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() string {
	return o.customerID
}

func (o *Order) Pickup() Place {
	return o.pickup
}

func (o *Order) Dropoff() Place {
	return o.dropoff
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	return slices.Clone(o.items)
}

func (o *Order) TotalAmount() decimal.Decimal {
	return o.totalAmount
}

func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

func (o *Order) Status() Status {
	return o.status
}

// Courier returns the assigned courier's id, or nil when unassigned.
func (o *Order) Courier() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

// RejectedBy returns the couriers that declined the order, in the order they
// declined it.
func (o *Order) RejectedBy() []kernel.UUID {
	return slices.Clone(o.rejectedBy)
}

// IsRejectedBy reports whether courierID has declined the order.
func (o *Order) IsRejectedBy(courierID kernel.UUID) bool {
	return slices.ContainsFunc(o.rejectedBy, courierID.IsEqual)
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Apply performs t if the order is still in t.From(). A mismatch is reported
// as a conflict and leaves the order untouched.
func (o *Order) Apply(t Transition, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := t.From().CanTransitionTo(t.To()); err != nil {
		return err
	}
	if o.status != t.From() {
		return errs.NewObjectConflictErrorWithCause("order", o.id.String(),
			fmt.Errorf("status is %s, expected %s", o.status, t.From()))
	}

	switch {
	case t.AssignsCourier():
		id := *t.CourierID()
		o.courierID = &id
	case t.ClearsCourier():
		o.courierID = nil
	}
	o.status = t.To()
	o.updatedAt = now.UTC()
	return nil
}

// Reject records that courierID declined the order. It only applies while the
// order is pending; added is false when the courier had already declined.
func (o *Order) Reject(courierID kernel.UUID, now time.Time) (added bool, err error) {
	if err := errors.Join(o.Validate(), courierID.Validate()); err != nil {
		return false, err
	}
	if o.status != Pending {
		return false, errs.NewObjectNotFoundErrorWithCause("pending order", o.id.String(),
			fmt.Errorf("status is %s", o.status))
	}
	if o.IsRejectedBy(courierID) {
		return false, nil
	}

	o.rejectedBy = append(o.rejectedBy, courierID)
	o.updatedAt = now.UTC()
	return true, nil
}

// Clone returns a deep copy that shares no mutable state with o.
func (o *Order) Clone() *Order {
	c := *o
	c.items = slices.Clone(o.items)
	c.rejectedBy = slices.Clone(o.rejectedBy)
	c.courierID = o.Courier()
	return &c
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerId")
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setPickup(p Place) error {
	if err := p.geo.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("pickup.geo", err)
	}
	o.pickup = p
	return nil
}

func (o *Order) setDropoff(p Place) error {
	if err := p.geo.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("dropoff.geo", err)
	}
	o.dropoff = p
	return nil
}

func (o *Order) setItems(items []Item) error {
	for i, item := range items {
		if item.name == "" || item.quantity < 1 {
			return errs.NewValueIsInvalidErrorWithCause("items",
				fmt.Errorf("item %d must be created via NewItem", i))
		}
	}
	o.items = slices.Clone(items)
	if o.items == nil {
		o.items = make([]Item, 0)
	}
	return nil
}

func (o *Order) setTotalAmount(total decimal.Decimal) error {
	if total.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("totalAmount", fmt.Errorf("%s is negative", total))
	}
	o.totalAmount = total
	return nil
}

func (o *Order) setPaymentMethod(m PaymentMethod) error {
	if err := m.Validate(); err != nil {
		return err
	}
	o.paymentMethod = m
	return nil
}

func (o *Order) setStatusAndCourier(status Status, courierID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if err := status.ValidateCanHaveCourier(courierID != nil); err != nil {
		return err
	}
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return err
		}
		id := *courierID
		o.courierID = &id
	}
	o.status = status
	return nil
}

func (o *Order) setRejectedBy(ids []kernel.UUID) error {
	o.rejectedBy = make([]kernel.UUID, 0, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return err
		}
		if !slices.ContainsFunc(o.rejectedBy, id.IsEqual) {
			o.rejectedBy = append(o.rejectedBy, id)
		}
	}
	return nil
}
