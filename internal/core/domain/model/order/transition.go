package order

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Transition is a validated status change from an expected status to a new
// one. Stores apply it as a compare-and-swap keyed on (order id, From): if the
// stored status is no longer From, nothing is written.
type Transition struct {
	from      Status
	to        Status
	courierID *kernel.UUID
}

// NewTransition checks that to is reachable from from. Moving to accepted
// requires the claiming courier; no other transition takes one.
func NewTransition(from, to Status, courierID *kernel.UUID) (Transition, error) {
	if err := from.CanTransitionTo(to); err != nil {
		return Transition{}, err
	}

	if to == Accepted {
		if courierID == nil {
			return Transition{}, errs.NewValueIsRequiredError("courierId")
		}
		if err := courierID.Validate(); err != nil {
			return Transition{}, err
		}
		id := *courierID
		return Transition{from: from, to: to, courierID: &id}, nil
	}

	if courierID != nil {
		return Transition{}, errs.NewValueIsInvalidErrorWithCause("courierId",
			errors.New("only a transition to accepted assigns a courier"))
	}
	return Transition{from: from, to: to}, nil
}

// Accept is the claim transition pending -> accepted for courierID.
func Accept(courierID kernel.UUID) (Transition, error) {
	return NewTransition(Pending, Accepted, &courierID)
}

func (t Transition) From() Status {
	return t.from
}

func (t Transition) To() Status {
	return t.to
}

// CourierID is the courier assigned by this transition, nil unless To is accepted.
func (t Transition) CourierID() *kernel.UUID {
	return t.courierID
}

// AssignsCourier reports whether applying t sets the assigned courier.
func (t Transition) AssignsCourier() bool {
	return t.to == Accepted
}

// ClearsCourier reports whether applying t removes the assigned courier.
func (t Transition) ClearsCourier() bool {
	return t.to == Cancelled
}

func (t Transition) String() string {
	return string(t.from) + " -> " + string(t.to)
}
