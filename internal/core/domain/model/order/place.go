package order

import (
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Place is a pickup or dropoff point: an optional free-form address and a
// required geo point.
type Place struct {
	address string
	geo     kernel.GeoPoint
}

// NewPlace trims the address and requires a constructed geo point. paramName
// prefixes the field in error messages, e.g. "pickup".
func NewPlace(paramName, address string, geo kernel.GeoPoint) (Place, error) {
	if err := geo.Validate(); err != nil {
		return Place{}, errs.NewValueIsRequiredErrorWithCause(paramName+".geo", err)
	}
	return Place{address: strings.TrimSpace(address), geo: geo}, nil
}

func (p Place) Address() string {
	return p.address
}

func (p Place) Geo() kernel.GeoPoint {
	return p.geo
}
