package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order. The string value is what is
// persisted and what travels over the wire.
//
// State transitions:
//
//	pending ──> accepted ──> picked_up ──> delivered
//	   │           │             │
//	   └───────────┴─────────────┴──────> cancelled
type Status string

const (
	// Pending is the initial status. Only pending orders are offered to couriers.
	Pending Status = "pending"
	// Accepted means exactly one courier claimed the order.
	Accepted Status = "accepted"
	// PickedUp means the courier collected the items.
	PickedUp Status = "picked_up"
	// Delivered is terminal.
	Delivered Status = "delivered"
	// Cancelled is terminal and clears the assigned courier.
	Cancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	Pending:   {Accepted, Cancelled},
	Accepted:  {PickedUp, Cancelled},
	PickedUp:  {Delivered, Cancelled},
	Delivered: nil,
	Cancelled: nil,
}

// Statuses lists every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Accepted, PickedUp, Delivered, Cancelled}
}

// ParseStatus converts the wire form into a Status. Surrounding spaces and
// letter case are ignored.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate fails for anything outside the five known statuses.
func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// HasCourier reports whether an order in status s must carry an assigned courier.
func (s Status) HasCourier() bool {
	return s == Accepted || s == PickedUp || s == Delivered
}

// CanTransitionTo returns nil when next is directly reachable from s. An
// unreachable target is a conflict with the order's current state, not a
// malformed request.
func (s Status) CanTransitionTo(next Status) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return nil
		}
	}
	return errs.NewObjectConflictErrorWithCause("order status", s.String(),
		fmt.Errorf("%s -> %s is not allowed", s, next))
}

// ValidateCanHaveCourier checks the courier/status invariant.
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && !s.HasCourier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have a courier", s),
		)
	}
	if !courier && s.HasCourier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have no courier", s),
		)
	}
	return nil
}
