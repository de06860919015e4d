package http

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GeoPoint is a GeoJSON point: coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Place is a pickup or dropoff location.
type Place struct {
	Address string    `json:"address,omitempty"`
	Geo     *GeoPoint `json:"geo"`
}

type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// LocationPing is the body of POST /api/couriers/location.
type LocationPing struct {
	CourierID   string    `json:"courierId,omitempty"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Vehicle     string    `json:"vehicle,omitempty"`
	IsAvailable *bool     `json:"isAvailable,omitempty"`
	Location    *GeoPoint `json:"location"`
}

// NewOrder is the body of POST /api/orders.
type NewOrder struct {
	CustomerID    string           `json:"customerId"`
	Pickup        *Place           `json:"pickup"`
	Dropoff       *Place           `json:"dropoff"`
	Items         []Item           `json:"items"`
	TotalAmount   *decimal.Decimal `json:"totalAmount"`
	PaymentMethod string           `json:"paymentMethod"`
}

// StatusChange is the body of POST /api/orders/:orderId/status.
type StatusChange struct {
	Status string `json:"status"`
}

type ItemResponse struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type PlaceResponse struct {
	Address string   `json:"address,omitempty"`
	Geo     GeoPoint `json:"geo"`
}

type Order struct {
	ID                string         `json:"id"`
	CustomerID        string         `json:"customerId"`
	Pickup            PlaceResponse  `json:"pickup"`
	Dropoff           PlaceResponse  `json:"dropoff"`
	Items             []ItemResponse `json:"items"`
	TotalAmount       float64        `json:"totalAmount"`
	PaymentMethod     string         `json:"paymentMethod"`
	Status            string         `json:"status"`
	AssignedCourierID *string        `json:"assignedCourierId"`
	RejectedBy        []string       `json:"rejectedBy"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type Courier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	Vehicle     string    `json:"vehicle,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	Location    GeoPoint  `json:"location"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

// CreatedOrder is the response of POST /api/orders.
type CreatedOrder struct {
	Order             Order     `json:"order"`
	CandidateCouriers []Courier `json:"candidateCouriers"`
}

// Health is the response of GET /health.
type Health struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func geoPointFromDomain(p kernel.GeoPoint) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: p.Coordinates()}
}

func (g *GeoPoint) toDomain(param string) (kernel.GeoPoint, error) {
	if g == nil || g.Coordinates == nil {
		return kernel.GeoPoint{}, errs.NewValueIsRequiredError(param + ".coordinates")
	}
	if g.Type != "" && g.Type != "Point" {
		return kernel.GeoPoint{}, errs.NewValueIsInvalidError(param + ".type")
	}
	p, err := kernel.GeoPointFromCoordinates(g.Coordinates)
	if err != nil {
		return kernel.GeoPoint{}, errs.NewValueIsInvalidErrorWithCause(param+".coordinates", err)
	}
	return p, nil
}

func (p *Place) toDomain(param string) (order.Place, error) {
	if p == nil {
		return order.Place{}, errs.NewValueIsRequiredError(param)
	}
	geo, err := p.Geo.toDomain(param + ".geo")
	if err != nil {
		return order.Place{}, err
	}
	return order.NewPlace(param, p.Address, geo)
}

func itemsToDomain(items []Item) ([]order.Item, error) {
	result := make([]order.Item, 0, len(items))
	for _, it := range items {
		item, err := order.NewItem(it.Name, it.Quantity, it.Price)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func orderFromDomain(o *order.Order) Order {
	items := make([]ItemResponse, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemResponse{Name: it.Name(), Quantity: it.Quantity(), Price: it.Price().InexactFloat64()})
	}

	rejectedBy := make([]string, 0, len(o.RejectedBy()))
	for _, id := range o.RejectedBy() {
		rejectedBy = append(rejectedBy, id.String())
	}

	var courierID *string
	if id := o.Courier(); id != nil {
		s := id.String()
		courierID = &s
	}

	return Order{
		ID:                o.ID().String(),
		CustomerID:        o.CustomerID(),
		Pickup:            placeFromDomain(o.Pickup()),
		Dropoff:           placeFromDomain(o.Dropoff()),
		Items:             items,
		TotalAmount:       o.TotalAmount().InexactFloat64(),
		PaymentMethod:     o.PaymentMethod().String(),
		Status:            o.Status().String(),
		AssignedCourierID: courierID,
		RejectedBy:        rejectedBy,
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
	}
}

func ordersFromDomain(orders []*order.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, orderFromDomain(o))
	}
	return result
}

func placeFromDomain(p order.Place) PlaceResponse {
	return PlaceResponse{Address: p.Address(), Geo: geoPointFromDomain(p.Geo())}
}

func courierFromDomain(c *courier.Courier) Courier {
	return Courier{
		ID:          c.ID().String(),
		Name:        c.Name(),
		Phone:       c.Phone(),
		Vehicle:     c.Vehicle(),
		IsAvailable: c.IsAvailable(),
		Location:    geoPointFromDomain(c.Location()),
		LastSeenAt:  c.LastSeenAt(),
	}
}

func couriersFromDomain(couriers []*courier.Courier) []Courier {
	result := make([]Courier, 0, len(couriers))
	for _, c := range couriers {
		result = append(result, courierFromDomain(c))
	}
	return result
}
