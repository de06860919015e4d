// Package geo has the spherical-earth math shared by the spatial indexes:
// great-circle distance and the lon/lat box that encloses a search circle.
// Both are computed with S2 (github.com/golang/geo/s2).
package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371008.8

// MetersPerDegree is the length of one degree of latitude.
const MetersPerDegree = EarthRadiusMeters * math.Pi / 180

// Distance returns the great-circle distance in meters between two
// (longitude, latitude) pairs given in degrees.
func Distance(lon1, lat1, lon2, lat2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// Box is an axis-aligned lon/lat rectangle in degrees. Boxes never cross the
// antimeridian; MinLon <= MaxLon always holds.
type Box struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

// Contains reports whether (lon, lat) lies inside b, edges included.
func (b Box) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// capBound is the S2 lat/lng rectangle around the spherical cap of
// radiusMeters centred on (lon, lat).
func capBound(lon, lat, radiusMeters float64) s2.Rect {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	angle := s1.Angle(radiusMeters / EarthRadiusMeters)
	return s2.CapFromCenterAngle(center, angle).RectBound()
}

// Extent returns the half-height and half-width in degrees of a box that
// encloses every point within radiusMeters of a point at latitude lat.
// wholeLon is true when the circle reaches a pole or wraps all longitudes.
func Extent(lat, radiusMeters float64) (dLat, dLon float64, wholeLon bool) {
	dLat = radiusMeters / MetersPerDegree
	rect := capBound(0, lat, radiusMeters)
	if rect.Lng.IsFull() {
		return dLat, 180, true
	}
	dLon = s1.Angle(rect.Lng.Hi).Degrees()
	if dLon >= 180 {
		return dLat, 180, true
	}
	return dLat, dLon, false
}

// BoundingBoxes returns one or two boxes that together enclose the circle of
// radiusMeters around (lon, lat). Two boxes are returned when the circle
// crosses the antimeridian.
func BoundingBoxes(lon, lat, radiusMeters float64) []Box {
	rect := capBound(lon, lat, radiusMeters)
	minLat := math.Max(s1.Angle(rect.Lat.Lo).Degrees(), -90)
	maxLat := math.Min(s1.Angle(rect.Lat.Hi).Degrees(), 90)

	if rect.Lng.IsFull() {
		return []Box{{MinLon: -180, MinLat: minLat, MaxLon: 180, MaxLat: maxLat}}
	}

	minLon := s1.Angle(rect.Lng.Lo).Degrees()
	maxLon := s1.Angle(rect.Lng.Hi).Degrees()
	if rect.Lng.IsInverted() {
		return []Box{
			{MinLon: minLon, MinLat: minLat, MaxLon: 180, MaxLat: maxLat},
			{MinLon: -180, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat},
		}
	}
	return []Box{{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}}
}
