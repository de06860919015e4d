// Package orderrepo stores orders in the orders table through gorm. Status
// changes and rejections are single conditional UPDATE statements, so the
// database decides which of several concurrent writers wins.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/geocell"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderDTO is one row of the orders table.
type OrderDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq               int64     `gorm:"->"`
	CustomerID        string
	Pickup            PlaceDTO        `gorm:"embedded;embeddedPrefix:pickup_"`
	PickupGeohash     string          `gorm:"column:pickup_geohash"`
	Dropoff           PlaceDTO        `gorm:"embedded;embeddedPrefix:dropoff_"`
	Items             []ItemDTO       `gorm:"type:jsonb;serializer:json"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric"`
	PaymentMethod     string
	Status            string
	AssignedCourierID *uuid.UUID     `gorm:"type:uuid"`
	RejectedBy        pq.StringArray `gorm:"type:text[]"`
	CreatedAt         time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime:false"`
}

// TableName pins the table name used by the migrations.
func (OrderDTO) TableName() string {
	return "orders"
}

// PlaceDTO is the embedded pickup or dropoff address.
type PlaceDTO struct {
	Address   string
	Longitude float64
	Latitude  float64
}

// ItemDTO is one element of the items jsonb column.
type ItemDTO struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func fromDomain(o *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := o.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	items := make([]ItemDTO, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemDTO{Name: it.Name(), Quantity: it.Quantity(), Price: it.Price()})
	}

	rejectedBy := make(pq.StringArray, 0, len(o.RejectedBy()))
	for _, id := range o.RejectedBy() {
		rejectedBy = append(rejectedBy, id.String())
	}

	pickup := o.Pickup().Geo()
	return OrderDTO{
		ID:                o.ID().Bytes(),
		CustomerID:        o.CustomerID(),
		Pickup:            placeFromDomain(o.Pickup()),
		PickupGeohash:     geocell.Encode(pickup.Longitude(), pickup.Latitude()),
		Dropoff:           placeFromDomain(o.Dropoff()),
		Items:             items,
		TotalAmount:       o.TotalAmount(),
		PaymentMethod:     o.PaymentMethod().String(),
		Status:            o.Status().String(),
		AssignedCourierID: courierID,
		RejectedBy:        rejectedBy,
		CreatedAt:         o.CreatedAt().UTC(),
		UpdatedAt:         o.UpdatedAt().UTC(),
	}
}

func placeFromDomain(p order.Place) PlaceDTO {
	return PlaceDTO{
		Address:   p.Address(),
		Longitude: p.Geo().Longitude(),
		Latitude:  p.Geo().Latitude(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.AssignedCourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.AssignedCourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	pickup, err := placeToDomain("pickup", dto.Pickup)
	if err != nil {
		return nil, err
	}
	dropoff, err := placeToDomain("dropoff", dto.Dropoff)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		item, itemErr := order.NewItem(it.Name, it.Quantity, it.Price)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	rejectedBy := make([]kernel.UUID, 0, len(dto.RejectedBy))
	for _, raw := range dto.RejectedBy {
		cID, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		rejectedBy = append(rejectedBy, cID)
	}

	return order.RestoreOrder(
		id,
		dto.CustomerID,
		pickup,
		dropoff,
		items,
		dto.TotalAmount,
		order.PaymentMethod(dto.PaymentMethod),
		order.Status(dto.Status),
		courierID,
		rejectedBy,
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}

func placeToDomain(paramName string, dto PlaceDTO) (order.Place, error) {
	geo, err := kernel.NewGeoPoint(dto.Longitude, dto.Latitude)
	if err != nil {
		return order.Place{}, err
	}
	return order.NewPlace(paramName, dto.Address, geo)
}
