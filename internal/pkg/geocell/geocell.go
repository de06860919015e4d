// Package geocell maps points to geohash cells so that a SQL store can narrow a
// radius search with an indexed prefix match before the exact distance check.
package geocell

import (
	"math"

	"dispatch/internal/pkg/geo"

	"github.com/mmcloughlin/geohash"
)

// StoredPrecision is the geohash length persisted next to every point. Any
// shorter cell is a prefix of it.
const StoredPrecision = 12

// Encode returns the full-precision geohash of (lon, lat).
func Encode(lon, lat float64) string {
	return geohash.EncodeWithPrecision(lat, lon, StoredPrecision)
}

// Cover returns geohash prefixes whose cells together contain every point
// within radiusMeters of (lon, lat): the cell holding the point plus its eight
// neighbours, at the finest precision whose cells are no smaller than the
// search box. ok is false when no such cover exists (the circle reaches a pole,
// crosses the antimeridian, or is wider than the coarsest cell); callers should
// then skip the prefilter.
func Cover(lon, lat, radiusMeters float64) (prefixes []string, ok bool) {
	if radiusMeters < 0 {
		return nil, false
	}

	dLat, dLon, wholeLon := geo.Extent(lat, radiusMeters)
	if wholeLon || lon-dLon < -180 || lon+dLon > 180 {
		return nil, false
	}

	precision := uint(0)
	for p := uint(StoredPrecision); p >= 1; p-- {
		cellLat, cellLon := cellSize(p)
		if cellLat >= dLat && cellLon >= dLon {
			precision = p
			break
		}
	}
	if precision == 0 {
		return nil, false
	}

	centre := geohash.EncodeWithPrecision(lat, lon, precision)
	prefixes = append([]string{centre}, geohash.Neighbors(centre)...)
	return dedupe(prefixes), true
}

// cellSize returns the height and width in degrees of a geohash cell with the
// given number of characters. Longitude takes the extra bit when the bit count
// is odd.
func cellSize(precision uint) (latDeg, lonDeg float64) {
	bits := 5 * int(precision)
	lonBits := (bits + 1) / 2
	latBits := bits / 2
	return 180 / math.Pow(2, float64(latBits)), 360 / math.Pow(2, float64(lonBits))
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
