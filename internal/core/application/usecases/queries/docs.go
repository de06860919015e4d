// Package queries contains read-only operations over orders and couriers.
// Queries never change state; each is built by its New...Query constructor and
// executed by a handler's Handle method.
package queries

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

type (
	// OrderReader loads orders (ports.OrderRepository).
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
		FindByCustomer(ctx context.Context, customerID string, limit int) ([]*order.Order, error)
	}

	// CourierGetter loads couriers (services.CourierRegistry).
	CourierGetter interface {
		Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)
	}

	// PendingOrderFinder lists pending orders around a courier
	// (services.DispatchMatcher).
	PendingOrderFinder interface {
		PendingNear(ctx context.Context, c *courier.Courier, radiusMeters float64) ([]*order.Order, error)
	}

	// OrderCounter counts orders by status (ports.OrderRepository).
	OrderCounter interface {
		CountByStatus(ctx context.Context, status order.Status) (int64, error)
	}
)
