package kernel

import (
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
)

// ValidateSearchRadius checks a client-chosen search radius in meters. Zero is
// accepted and means "use the default"; negative and non-finite values are not.
func ValidateSearchRadius(meters float64) error {
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return errs.NewValueIsInvalidErrorWithCause("maxDistance", fmt.Errorf("%v is not a finite number", meters))
	}
	if meters < 0 {
		return errs.NewValueIsOutOfRangeError("maxDistance", meters, 0, "+Inf")
	}
	return nil
}
