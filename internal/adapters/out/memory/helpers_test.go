package memory_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

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

func newOrderAt(t *testing.T, customerID string, lon, lat float64, createdAt time.Time) *order.Order {
	t.Helper()
	pickup, err := order.NewPlace("pickup", "", point(t, lon, lat))
	require.NoError(t, err)
	dropoff, err := order.NewPlace("dropoff", "", point(t, lon+0.01, lat+0.01))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), customerID, pickup, dropoff, nil,
		decimal.NewFromInt(40), order.Card, createdAt)
	require.NoError(t, err)
	return o
}
