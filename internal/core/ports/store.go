package ports

import "context"

// Store hands out the repositories of one backing store.
type Store interface {
	CourierRepository() CourierRepository
	OrderRepository() OrderRepository

	// Ping checks that the store answers.
	Ping(ctx context.Context) error
}
