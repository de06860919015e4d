package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCourierUpserter struct{ mock.Mock }

func (m *MockCourierUpserter) Upsert(ctx context.Context, ping services.LocationPing) (*courier.Courier, error) {
	args := m.Called(ctx, ping)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

type MockOrderAdder struct{ mock.Mock }

func (m *MockOrderAdder) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockCandidateFinder struct{ mock.Mock }

func (m *MockCandidateFinder) Candidates(
	ctx context.Context,
	o *order.Order,
	radiusMeters float64,
) ([]*courier.Courier, error) {
	args := m.Called(ctx, o, radiusMeters)
	found, _ := args.Get(0).([]*courier.Courier)
	return found, args.Error(1)
}

type MockOrderClaimer struct{ mock.Mock }

func (m *MockOrderClaimer) Accept(ctx context.Context, courierID, orderID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, courierID, orderID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderClaimer) Reject(ctx context.Context, courierID, orderID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, courierID, orderID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockOrderAdvancer struct{ mock.Mock }

func (m *MockOrderAdvancer) Advance(ctx context.Context, orderID kernel.UUID, next order.Status) (*order.Order, error) {
	args := m.Called(ctx, orderID, next)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) ClaimAttempted(outcome string)     { m.Called(outcome) }
func (m *MockMetrics) RejectionAttempted(outcome string) { m.Called(outcome) }
func (m *MockMetrics) OrderCreated(candidates int)       { m.Called(candidates) }
func (m *MockMetrics) PendingBacklog(count int64)        { m.Called(count) }

func point(t *testing.T, lon, lat float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lon, lat)
	require.NoError(t, err)
	return p
}

func place(t *testing.T, param string, lon, lat float64) order.Place {
	t.Helper()
	p, err := order.NewPlace(param, "", point(t, lon, lat))
	require.NoError(t, err)
	return p
}

func newCourier(t *testing.T, lon, lat float64) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), courier.Profile{Phone: "+911"}, true, point(t, lon, lat), time.Now())
	require.NoError(t, err)
	return c
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		kernel.NewUUID(),
		"customer-1",
		place(t, "pickup", 77.209, 28.6139),
		place(t, "dropoff", 77.215, 28.62),
		nil,
		decimal.NewFromInt(120),
		order.Cash,
		time.Now(),
	)
	require.NoError(t, err)
	return o
}
