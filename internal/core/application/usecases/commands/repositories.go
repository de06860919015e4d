// Package commands contains the operations that change dispatch state.
// Every command is built by its New...Command constructor, which validates the
// input, and is executed by a handler's Handle method.
package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
)

// Collaborators of the command handlers. The domain services and the store
// repositories satisfy them.
type (
	// CourierUpserter applies location pings (services.CourierRegistry).
	CourierUpserter interface {
		Upsert(ctx context.Context, ping services.LocationPing) (*courier.Courier, error)
	}

	// OrderAdder persists new orders (ports.OrderRepository).
	OrderAdder interface {
		Add(ctx context.Context, aggregate *order.Order) error
	}

	// CandidateFinder suggests couriers for a new order (services.DispatchMatcher).
	CandidateFinder interface {
		Candidates(ctx context.Context, o *order.Order, radiusMeters float64) ([]*courier.Courier, error)
	}

	// OrderClaimer accepts and rejects orders on behalf of couriers
	// (services.ClaimCoordinator).
	OrderClaimer interface {
		Accept(ctx context.Context, courierID, orderID kernel.UUID) (*order.Order, error)
		Reject(ctx context.Context, courierID, orderID kernel.UUID) (*order.Order, error)
	}

	// OrderAdvancer moves orders along the delivery lifecycle
	// (services.ClaimCoordinator).
	OrderAdvancer interface {
		Advance(ctx context.Context, orderID kernel.UUID, next order.Status) (*order.Order, error)
	}
)
