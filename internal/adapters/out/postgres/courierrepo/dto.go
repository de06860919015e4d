// Package courierrepo stores couriers in the couriers table through gorm.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/geocell"

	"github.com/google/uuid"
)

// CourierDTO is one row of the couriers table. Geohash is derived from the
// location on every write and only serves the proximity prefilter.
type CourierDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string
	Phone       string
	Vehicle     string
	IsAvailable bool
	Longitude   float64
	Latitude    float64
	Geohash     string
	LastSeenAt  time.Time
}

// TableName pins the table name used by the migrations.
func (CourierDTO) TableName() string {
	return "couriers"
}

func fromDomain(c *courier.Courier) CourierDTO {
	location := c.Location()
	return CourierDTO{
		ID:          c.ID().Bytes(),
		Name:        c.Name(),
		Phone:       c.Phone(),
		Vehicle:     c.Vehicle(),
		IsAvailable: c.IsAvailable(),
		Longitude:   location.Longitude(),
		Latitude:    location.Latitude(),
		Geohash:     geocell.Encode(location.Longitude(), location.Latitude()),
		LastSeenAt:  c.LastSeenAt().UTC(),
	}
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Longitude, dto.Latitude)
	if err != nil {
		return nil, err
	}

	return courier.RestoreCourier(
		id,
		courier.Profile{Name: dto.Name, Phone: dto.Phone, Vehicle: dto.Vehicle},
		dto.IsAvailable,
		location,
		dto.LastSeenAt,
	)
}
