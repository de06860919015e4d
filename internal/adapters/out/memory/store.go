// Package memory is a single-process implementation of the dispatch store.
// Each repository serialises its writes with a mutex, which gives the same
// compare-and-swap guarantees as the SQL store within one process. It backs
// local runs and tests; deployments with more than one process use postgres.
package memory

import (
	"context"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Store owns one courier repository and one order repository.
type Store struct {
	couriers *CourierRepository
	orders   *OrderRepository
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		couriers: NewCourierRepository(),
		orders:   NewOrderRepository(),
	}
}

func (s *Store) CourierRepository() ports.CourierRepository {
	return s.couriers
}

func (s *Store) OrderRepository() ports.OrderRepository {
	return s.orders
}

// Ping only fails for a finished context.
func (s *Store) Ping(ctx context.Context) error {
	return checkContext(ctx, "ping")
}

func checkContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return errs.NewStoreUnavailableError(operation, err)
	}
	return nil
}
