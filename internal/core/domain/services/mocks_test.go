package services_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

func (m *MockCourierRepository) FindByPhone(ctx context.Context, phone string) (*courier.Courier, error) {
	args := m.Called(ctx, phone)
	c, _ := args.Get(0).(*courier.Courier)
	return c, args.Error(1)
}

func (m *MockCourierRepository) FindAvailableNear(
	ctx context.Context, center kernel.GeoPoint, radiusMeters float64, limit int,
) ([]*courier.Courier, error) {
	args := m.Called(ctx, center, radiusMeters, limit)
	c, _ := args.Get(0).([]*courier.Courier)
	return c, args.Error(1)
}

type MockCourierLocator struct{ mock.Mock }

func (m *MockCourierLocator) Track(ctx context.Context, id kernel.UUID, location kernel.GeoPoint) error {
	return m.Called(ctx, id, location).Error(0)
}

func (m *MockCourierLocator) Forget(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCourierLocator) Nearby(
	ctx context.Context, center kernel.GeoPoint, radiusMeters float64, limit int,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, center, radiusMeters, limit)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) TransitionIfStatus(
	ctx context.Context, id kernel.UUID, t order.Transition,
) (*order.Order, bool, error) {
	args := m.Called(ctx, id, t)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *MockOrderRepository) AddRejection(
	ctx context.Context, id kernel.UUID, courierID kernel.UUID,
) (*order.Order, bool, error) {
	args := m.Called(ctx, id, courierID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *MockOrderRepository) FindPendingNear(
	ctx context.Context, center kernel.GeoPoint, radiusMeters float64, excludeRejectedBy kernel.UUID, limit int,
) ([]*order.Order, error) {
	args := m.Called(ctx, center, radiusMeters, excludeRejectedBy, limit)
	o, _ := args.Get(0).([]*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID string, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, customerID, limit)
	o, _ := args.Get(0).([]*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
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

func newCourier(t *testing.T, phone string, available bool, lon, lat float64) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), courier.Profile{Phone: phone}, available, point(t, lon, lat), time.Now())
	require.NoError(t, err)
	return c
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	pickup, err := order.NewPlace("pickup", "Library", point(t, 77.209, 28.6139))
	require.NoError(t, err)
	dropoff, err := order.NewPlace("dropoff", "Hostel 4", point(t, 77.215, 28.62))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), "customer-1", pickup, dropoff, nil,
		decimal.NewFromInt(50), order.Cash, time.Now())
	require.NoError(t, err)
	return o
}
