package http

import (
	"context"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	UpdateCourierLocation commands.UpdateCourierLocationCommandHandler
	CreateOrder           commands.CreateOrderCommandHandler
	SetOrderStatus        commands.SetOrderStatusCommandHandler
	AcceptOrder           commands.AcceptOrderCommandHandler
	RejectOrder           commands.RejectOrderCommandHandler

	GetOrder                queries.GetOrderQueryHandler
	ListCustomerOrders      queries.ListCustomerOrdersQueryHandler
	ListNearbyPendingOrders queries.ListNearbyPendingOrdersQueryHandler
}

// Server translates HTTP requests into commands and queries and renders their
// results as JSON.
type Server struct {
	handlers Handlers
	store    Pinger
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, store Pinger, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		store:    store,
		logger:   logger.With("component", "http"),
	}
}

// UpdateCourierLocation handles POST /api/couriers/location.
func (s *Server) UpdateCourierLocation(ctx echo.Context) error {
	var body LocationPing
	if err := ctx.Bind(&body); err != nil {
		return s.badBody(ctx, err)
	}

	var courierID *kernel.UUID
	if body.CourierID != "" {
		id, err := kernel.UUIDFromString(body.CourierID)
		if err != nil {
			return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("courierId", err))
		}
		courierID = &id
	}

	location, err := body.Location.toDomain("location")
	if err != nil {
		return s.fail(ctx, err)
	}

	available := true
	if body.IsAvailable != nil {
		available = *body.IsAvailable
	}

	cmd, err := commands.NewUpdateCourierLocationCommand(
		courierID,
		courier.Profile{Name: body.Name, Phone: body.Phone, Vehicle: body.Vehicle},
		available,
		location,
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	c, err := s.handlers.UpdateCourierLocation.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, courierFromDomain(c))
}

// CreateOrder handles POST /api/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	maxDistance, err := maxDistanceParam(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body NewOrder
	if err = ctx.Bind(&body); err != nil {
		return s.badBody(ctx, err)
	}

	cmd, err := newCreateOrderCommand(body, maxDistance)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedOrder{
		Order:             orderFromDomain(result.Order),
		CandidateCouriers: couriersFromDomain(result.Candidates),
	})
}

func newCreateOrderCommand(body NewOrder, maxDistance float64) (commands.CreateOrderCommand, error) {
	if body.TotalAmount == nil {
		return commands.CreateOrderCommand{}, errs.NewValueIsRequiredError("totalAmount")
	}

	pickup, err := body.Pickup.toDomain("pickup")
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	dropoff, err := body.Dropoff.toDomain("dropoff")
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	items, err := itemsToDomain(body.Items)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	method, err := order.ParsePaymentMethod(body.PaymentMethod)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	return commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		body.CustomerID,
		pickup,
		dropoff,
		items,
		*body.TotalAmount,
		method,
		maxDistance,
	)
}

// GetOrder handles GET /api/orders/:orderId.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := uuidParam(ctx, "orderId")
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(o))
}

// ListCustomerOrders handles GET /api/orders?customerId=&limit=.
func (s *Server) ListCustomerOrders(ctx echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(ctx).Int("limit", &limit).BindError(); err != nil {
		return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("limit", err))
	}

	query, err := queries.NewListCustomerOrdersQuery(ctx.QueryParam("customerId"), limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	orders, err := s.handlers.ListCustomerOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ordersFromDomain(orders))
}

// SetOrderStatus handles POST /api/orders/:orderId/status.
func (s *Server) SetOrderStatus(ctx echo.Context) error {
	orderID, err := uuidParam(ctx, "orderId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body StatusChange
	if err = ctx.Bind(&body); err != nil {
		return s.badBody(ctx, err)
	}

	status, err := order.ParseStatus(body.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewSetOrderStatusCommand(orderID, status)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.SetOrderStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(o))
}

// ListNearbyPendingOrders handles GET /api/couriers/:courierId/nearby-orders.
func (s *Server) ListNearbyPendingOrders(ctx echo.Context) error {
	courierID, err := uuidParam(ctx, "courierId")
	if err != nil {
		return s.fail(ctx, err)
	}
	maxDistance, err := maxDistanceParam(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewListNearbyPendingOrdersQuery(courierID, maxDistance)
	if err != nil {
		return s.fail(ctx, err)
	}

	orders, err := s.handlers.ListNearbyPendingOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ordersFromDomain(orders))
}

// AcceptOrder handles POST /api/couriers/:courierId/orders/:orderId/accept.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	courierID, orderID, err := claimParams(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewAcceptOrderCommand(courierID, orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.AcceptOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(o))
}

// RejectOrder handles POST /api/couriers/:courierId/orders/:orderId/reject.
func (s *Server) RejectOrder(ctx echo.Context) error {
	courierID, orderID, err := claimParams(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRejectOrderCommand(courierID, orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.RejectOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromDomain(o))
}

// Health handles GET /health. It answers 200 even when the store is down so
// that the process is not restarted for a database outage; the body says which.
func (s *Server) Health(ctx echo.Context) error {
	resp := Health{Status: "ok", Store: "ok"}
	if s.store != nil {
		if err := s.store.Ping(ctx.Request().Context()); err != nil {
			s.logger.Warn("store ping failed", "error", err)
			resp.Store = "unavailable"
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (s *Server) fail(ctx echo.Context, err error) error {
	return writeError(ctx, s.logger, err)
}

func (s *Server) badBody(ctx echo.Context, err error) error {
	return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("body", err))
}

func uuidParam(ctx echo.Context, name string) (kernel.UUID, error) {
	raw := ctx.Param(name)
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(name)
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func claimParams(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	courierID, err := uuidParam(ctx, "courierId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	orderID, err := uuidParam(ctx, "orderId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return courierID, orderID, nil
}

// maxDistanceParam reads the optional maxDistance query parameter in meters.
// Absent means 0, which the use cases replace with their default radius.
func maxDistanceParam(ctx echo.Context) (float64, error) {
	var maxDistance float64
	if err := echo.QueryParamsBinder(ctx).Float64("maxDistance", &maxDistance).BindError(); err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("maxDistance", err)
	}
	return maxDistance, nil
}
