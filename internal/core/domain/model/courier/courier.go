package courier

import (
	"errors"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// DefaultName is used when a courier's first ping carries no name.
const DefaultName = "Courier"

// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
var ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")

// Courier is a delivery person known to the dispatcher.
//
// Business rules:
//   - Has a valid UUID and a non-empty name
//   - Always has a valid location; the first ping must carry one
//   - Phone is the identifying key for pings that do not carry the courier id
//   - lastSeenAt moves forward on every ping
//
// Example usage:
//
//	loc, _ := kernel.NewGeoPoint(77.2091, 28.6140)
//	c, err := courier.NewCourier(kernel.NewUUID(), courier.Profile{Phone: "+91-98100"}, true, loc, time.Now())
type Courier struct {
	id         kernel.UUID
	name       string
	phone      string
	vehicle    string
	available  bool
	location   kernel.GeoPoint
	lastSeenAt time.Time
	guard      guard.ConstructorGuard
}

// Profile carries the descriptive fields of a ping. Empty fields mean "not
// supplied".
type Profile struct {
	Name    string
	Phone   string
	Vehicle string
}

// NewCourier creates a courier from its first ping. A missing name becomes
// DefaultName.
func NewCourier(
	id kernel.UUID,
	profile Profile,
	available bool,
	location kernel.GeoPoint,
	now time.Time,
) (*Courier, error) {
	c := &Courier{
		name:       DefaultName,
		available:  available,
		lastSeenAt: now.UTC(),
		guard:      guard.NewConstructorGuard(),
	}
	c.applyProfile(profile)

	if err := errors.Join(
		c.setID(id),
		c.setLocation(location),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier rebuilds a courier from persisted state.
func RestoreCourier(
	id kernel.UUID,
	profile Profile,
	available bool,
	location kernel.GeoPoint,
	lastSeenAt time.Time,
) (*Courier, error) {
	c := &Courier{
		name:       DefaultName,
		available:  available,
		lastSeenAt: lastSeenAt.UTC(),
		guard:      guard.NewConstructorGuard(),
	}
	c.applyProfile(profile)

	if err := errors.Join(
		c.setID(id),
		c.setLocation(location),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Ping applies a later location report: the location, availability and
// lastSeenAt are always replaced, profile fields only when supplied.
func (c *Courier) Ping(profile Profile, available bool, location kernel.GeoPoint, now time.Time) error {
	if err := errors.Join(c.Validate(), location.Validate()); err != nil {
		return err
	}

	c.applyProfile(profile)
	c.available = available
	c.location = location
	if now.After(c.lastSeenAt) {
		c.lastSeenAt = now.UTC()
	}
	return nil
}

// Validate fails for a nil or zero-value Courier.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares couriers by identifier.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) Phone() string {
	return c.phone
}

func (c *Courier) Vehicle() string {
	return c.vehicle
}

// IsAvailable reports whether the courier takes new orders.
func (c *Courier) IsAvailable() bool {
	return c.available
}

func (c *Courier) Location() kernel.GeoPoint {
	return c.location
}

func (c *Courier) LastSeenAt() time.Time {
	return c.lastSeenAt
}

// Clone returns an independent copy.
func (c *Courier) Clone() *Courier {
	cp := *c
	return &cp
}

func (c *Courier) applyProfile(p Profile) {
	if name := strings.TrimSpace(p.Name); name != "" {
		c.name = name
	}
	if phone := strings.TrimSpace(p.Phone); phone != "" {
		c.phone = phone
	}
	if vehicle := strings.TrimSpace(p.Vehicle); vehicle != "" {
		c.vehicle = vehicle
	}
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}
