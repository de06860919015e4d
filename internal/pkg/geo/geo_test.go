package geo_test

import (
	"testing"

	"dispatch/internal/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, geo.Distance(77.209, 28.6139, 77.209, 28.6139), 1e-9)
	assert.InDelta(t, 111195, geo.Distance(0, 0, 0, 1), 1)
	assert.InDelta(t, 111195, geo.Distance(179.5, 0, -179.5, 0), 1)
	assert.InDelta(t, geo.Distance(77.209, 28.6139, 77.23, 28.65), geo.Distance(77.23, 28.65, 77.209, 28.6139), 1e-6)
}

func TestBoundingBoxes(t *testing.T) {
	t.Run("encloses points on the circle", func(t *testing.T) {
		boxes := geo.BoundingBoxes(77.209, 28.6139, 2000)
		require.Len(t, boxes, 1)

		// 2km due north, south, east and west stay inside.
		d := 2000 / geo.MetersPerDegree
		assert.True(t, boxes[0].Contains(77.209, 28.6139+d*0.999))
		assert.True(t, boxes[0].Contains(77.209, 28.6139-d*0.999))
		assert.True(t, boxes[0].Contains(77.209+d*1.1, 28.6139))
		assert.True(t, boxes[0].Contains(77.209-d*1.1, 28.6139))
		assert.False(t, boxes[0].Contains(77.23, 28.65))
	})

	t.Run("splits across the antimeridian", func(t *testing.T) {
		boxes := geo.BoundingBoxes(179.99, 0, 5000)

		require.Len(t, boxes, 2)
		assert.InDelta(t, 180, boxes[0].MaxLon, 0)
		assert.InDelta(t, -180, boxes[1].MinLon, 0)
		assert.True(t, boxes[1].Contains(-179.99, 0))
	})

	t.Run("covers all longitudes at a pole", func(t *testing.T) {
		boxes := geo.BoundingBoxes(10, 89.99, 5000)

		require.Len(t, boxes, 1)
		assert.InDelta(t, -180, boxes[0].MinLon, 0)
		assert.InDelta(t, 180, boxes[0].MaxLon, 0)
		assert.InDelta(t, 90, boxes[0].MaxLat, 0)
	})
}

func TestExtent(t *testing.T) {
	t.Run("widens longitude away from the equator", func(t *testing.T) {
		dLat, dLon, wholeLon := geo.Extent(60, 10000)

		require.False(t, wholeLon)
		assert.InDelta(t, 10000/geo.MetersPerDegree, dLat, 1e-9)
		assert.Greater(t, dLon, 2*dLat*0.99)
	})

	t.Run("wraps at a pole", func(t *testing.T) {
		_, dLon, wholeLon := geo.Extent(-89.99, 5000)

		assert.True(t, wholeLon)
		assert.InDelta(t, 180, dLon, 0)
	})
}
