// Package order holds the Order aggregate of the dispatch system.
//
// The package includes:
//   - Order: the aggregate root with customer, pickup/dropoff places, items and lifecycle
//   - Status: the lifecycle state machine
//   - Transition: a checked status change, the unit that stores apply with compare-and-swap
//   - Place, Item, PaymentMethod: value objects used by Order
//
// Key business rules:
//   - Orders start in pending with no courier and an empty rejection set
//   - pending -> accepted -> picked_up -> delivered; any non-terminal state may be cancelled
//   - delivered and cancelled are terminal; nothing returns to pending
//   - A courier is assigned exactly while the order is accepted, picked_up or delivered
//   - Rejections only accumulate while the order is pending and are never removed
package order
