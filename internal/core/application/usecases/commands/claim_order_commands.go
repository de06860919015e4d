package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrAcceptOrderCommandIsNotConstructed = errs.NewValueIsRequiredError(
		"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
	)
	ErrRejectOrderCommandIsNotConstructed = errs.NewValueIsRequiredError(
		"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
	)
)

// courierOrderPair is the (courier, order) input shared by the accept and
// reject commands.
type courierOrderPair struct {
	courierID kernel.UUID
	orderID   kernel.UUID
}

func newCourierOrderPair(courierID, orderID kernel.UUID) (courierOrderPair, error) {
	var p courierOrderPair
	if err := errors.Join(
		wrapID("courierId", courierID.Validate()),
		wrapID("orderId", orderID.Validate()),
	); err != nil {
		return courierOrderPair{}, err
	}
	p.courierID = courierID
	p.orderID = orderID
	return p, nil
}

func wrapID(param string, err error) error {
	if err == nil {
		return nil
	}
	return errs.NewValueIsRequiredErrorWithCause(param, err)
}

// AcceptOrderCommand is a courier's attempt to claim a pending order.
//
// Example:
//
//	cmd, err := NewAcceptOrderCommand(courierID, orderID)
//	if err != nil {
//	    return err
//	}
//	o, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrObjectConflict) {
//	    // another courier was faster
//	}
type AcceptOrderCommand struct { //nolint:recvcheck //using for validation
	pair  courierOrderPair
	guard guard.ConstructorGuard
}

func NewAcceptOrderCommand(courierID, orderID kernel.UUID) (AcceptOrderCommand, error) {
	pair, err := newCourierOrderPair(courierID, orderID)
	if err != nil {
		return AcceptOrderCommand{}, err
	}
	return AcceptOrderCommand{pair: pair, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

func (c AcceptOrderCommand) CourierID() kernel.UUID {
	return c.pair.courierID
}

func (c AcceptOrderCommand) OrderID() kernel.UUID {
	return c.pair.orderID
}

// RejectOrderCommand records that a courier declined a pending order so it is
// no longer offered to them.
type RejectOrderCommand struct { //nolint:recvcheck //using for validation
	pair  courierOrderPair
	guard guard.ConstructorGuard
}

func NewRejectOrderCommand(courierID, orderID kernel.UUID) (RejectOrderCommand, error) {
	pair, err := newCourierOrderPair(courierID, orderID)
	if err != nil {
		return RejectOrderCommand{}, err
	}
	return RejectOrderCommand{pair: pair, guard: guard.NewConstructorGuard()}, nil
}

func (c RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}

func (c RejectOrderCommand) CourierID() kernel.UUID {
	return c.pair.courierID
}

func (c RejectOrderCommand) OrderID() kernel.UUID {
	return c.pair.orderID
}
