package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateCourierLocationCommandIsNotConstructed = errs.NewValueIsRequiredError(
	"UpdateCourierLocationCommand must be created via NewUpdateCourierLocationCommand constructor",
)

// UpdateCourierLocationCommand is one location ping from a courier app. The
// courier is identified by id when the app knows it, otherwise by phone.
//
// Example:
//
//	location, _ := kernel.NewGeoPoint(77.2091, 28.6140)
//	cmd, err := NewUpdateCourierLocationCommand(nil,
//	    courier.Profile{Name: "Asha", Phone: "+91 98100 00000"}, true, location)
//	if err != nil {
//	    return err
//	}
//	c, err := handler.Handle(ctx, cmd)
type UpdateCourierLocationCommand struct { //nolint:recvcheck //using for validation
	courierID *kernel.UUID
	profile   courier.Profile
	available bool
	location  kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewUpdateCourierLocationCommand requires a location and at least one of
// courierID and profile.Phone.
func NewUpdateCourierLocationCommand(
	courierID *kernel.UUID,
	profile courier.Profile,
	available bool,
	location kernel.GeoPoint,
) (UpdateCourierLocationCommand, error) {
	cmd := UpdateCourierLocationCommand{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIdentity(courierID, profile),
		cmd.setLocation(location),
	); err != nil {
		return UpdateCourierLocationCommand{}, err
	}

	return cmd, nil
}

func (c UpdateCourierLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierLocationCommandIsNotConstructed)
}

// CourierID is nil when the courier is identified by phone.
func (c UpdateCourierLocationCommand) CourierID() *kernel.UUID {
	if c.courierID == nil {
		return nil
	}
	id := *c.courierID
	return &id
}

func (c UpdateCourierLocationCommand) Profile() courier.Profile {
	return c.profile
}

func (c UpdateCourierLocationCommand) IsAvailable() bool {
	return c.available
}

func (c UpdateCourierLocationCommand) Location() kernel.GeoPoint {
	return c.location
}

func (c *UpdateCourierLocationCommand) setIdentity(courierID *kernel.UUID, profile courier.Profile) error {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Phone = strings.TrimSpace(profile.Phone)
	profile.Vehicle = strings.TrimSpace(profile.Vehicle)

	if courierID == nil && profile.Phone == "" {
		return errs.NewValueIsRequiredError("courierId or phone")
	}
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("courierId", err)
		}
		id := *courierID
		c.courierID = &id
	}

	c.profile = profile
	return nil
}

func (c *UpdateCourierLocationCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("location.coordinates", err)
	}

	c.location = location
	return nil
}
