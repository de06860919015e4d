package geocell_test

import (
	"math"
	"strings"
	"testing"

	"dispatch/internal/pkg/geo"
	"dispatch/internal/pkg/geocell"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	h := geocell.Encode(77.209, 28.6139)

	assert.Len(t, h, geocell.StoredPrecision)
	assert.True(t, strings.HasPrefix(h, "ttnf"), h)
}

func TestCover(t *testing.T) {
	const lon, lat = 77.209, 28.6139

	for _, radius := range []float64{0, 50, 500, 2000, 5000, 50000} {
		prefixes, ok := geocell.Cover(lon, lat, radius)
		require.True(t, ok, "radius %v", radius)
		require.NotEmpty(t, prefixes)
		assert.LessOrEqual(t, len(prefixes), 9)

		// Sample points on the circle must fall into one of the cells.
		for deg := 0.0; deg < 360; deg += 15 {
			rad := deg * math.Pi / 180
			pLat := lat + math.Cos(rad)*radius/geo.MetersPerDegree*0.999
			pLon := lon + math.Sin(rad)*radius/geo.MetersPerDegree/math.Cos(pLat*math.Pi/180)*0.999
			h := geocell.Encode(pLon, pLat)

			covered := false
			for _, p := range prefixes {
				if strings.HasPrefix(h, p) {
					covered = true
					break
				}
			}
			assert.True(t, covered, "radius %v bearing %v not covered", radius, deg)
		}
	}
}

func TestCover_LargerRadiusUsesShorterPrefix(t *testing.T) {
	small, ok := geocell.Cover(77.209, 28.6139, 100)
	require.True(t, ok)
	large, ok := geocell.Cover(77.209, 28.6139, 20000)
	require.True(t, ok)

	assert.Greater(t, len(small[0]), len(large[0]))
}

func TestCover_Unsupported(t *testing.T) {
	_, ok := geocell.Cover(179.999, 0, 5000)
	assert.False(t, ok, "antimeridian")

	_, ok = geocell.Cover(0, 89.99, 5000)
	assert.False(t, ok, "pole")

	_, ok = geocell.Cover(0, 0, 10_000_000)
	assert.False(t, ok, "wider than a precision-1 cell")

	_, ok = geocell.Cover(0, 0, -1)
	assert.False(t, ok)
}
