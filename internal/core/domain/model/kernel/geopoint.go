package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/geo"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLongitude and MaxLongitude bound a valid longitude in degrees.
	MinLongitude = -180.0
	MaxLongitude = 180.0
	// MinLatitude and MaxLatitude bound a valid latitude in degrees.
	MinLatitude = -90.0
	MaxLatitude = 90.0
)

// ErrGeoPointIsNotConstructed is returned when using a zero-value GeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint or GeoPointFromCoordinates")

// GeoPoint is a (longitude, latitude) pair in degrees, the order used by GeoJSON
// and by the courier app's location pings.
//
// Example:
//
//	pickup, err := kernel.NewGeoPoint(77.209, 28.6139)
//	if err != nil {
//	    return err
//	}
//	meters, _ := pickup.DistanceTo(courierLocation)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lon   float64
	lat   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates that both values are finite and inside
// [-180,180] x [-90,90].
func NewGeoPoint(lon, lat float64) (GeoPoint, error) {
	p := GeoPoint{guard: guard.NewConstructorGuard()}

	if err := errors.Join(p.setLongitude(lon), p.setLatitude(lat)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// GeoPointFromCoordinates accepts the wire form [longitude, latitude]. Anything
// other than exactly two numbers is rejected.
func GeoPointFromCoordinates(coordinates []float64) (GeoPoint, error) {
	if coordinates == nil {
		return GeoPoint{}, errs.NewValueIsRequiredError("location.coordinates")
	}
	if len(coordinates) != 2 {
		return GeoPoint{}, errs.NewValueIsInvalidErrorWithCause(
			"location.coordinates",
			fmt.Errorf("expected [longitude, latitude], got %d values", len(coordinates)),
		)
	}
	return NewGeoPoint(coordinates[0], coordinates[1])
}

// Validate fails for the zero value.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.lon
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.lat
}

// Coordinates returns the point in wire order [longitude, latitude].
func (p GeoPoint) Coordinates() []float64 {
	return []float64{p.lon, p.lat}
}

// IsEqual compares two constructed points.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return p.lon == other.lon && p.lat == other.lat, nil
}

// DistanceTo returns the great-circle (haversine) distance in meters.
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}
	return geo.Distance(p.lon, p.lat, other.lon, other.lat), nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%g,%g)", p.lon, p.lat)
}

func (p *GeoPoint) setLongitude(lon float64) error {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return errs.NewValueIsInvalidErrorWithCause("longitude", fmt.Errorf("%v is not a finite number", lon))
	}
	if lon < MinLongitude || lon > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", lon, MinLongitude, MaxLongitude)
	}
	p.lon = lon
	return nil
}

func (p *GeoPoint) setLatitude(lat float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return errs.NewValueIsInvalidErrorWithCause("latitude", fmt.Errorf("%v is not a finite number", lat))
	}
	if lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}
	p.lat = lat
	return nil
}
