package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CreateOrderResult is the stored order plus the couriers suggested for it.
type CreateOrderResult struct {
	Order      *order.Order
	Candidates []*courier.Courier
}

// CreateOrderCommandHandler stores a pending order and then looks up
// available couriers near its pickup. The lookup is advisory: it reserves
// nothing, and a failure there does not undo the order.
type CreateOrderCommandHandler struct {
	orders     OrderAdder
	candidates CandidateFinder
	metrics    ports.DispatchMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewCreateOrderCommandHandler creates the handler. metrics may be nil.
func NewCreateOrderCommandHandler(
	orders OrderAdder,
	candidates CandidateFinder,
	metrics ports.DispatchMetrics,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return CreateOrderCommandHandler{
		orders:     orders,
		candidates: candidates,
		metrics:    metrics,
		logger:     logger.With("component", "CreateOrderCommandHandler"),
		now:        time.Now,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	o, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.Pickup(),
		cmd.Dropoff(),
		cmd.Items(),
		cmd.TotalAmount(),
		cmd.PaymentMethod(),
		h.now(),
	)
	if err != nil {
		return CreateOrderResult{}, err
	}

	if err = h.orders.Add(ctx, o); err != nil {
		return CreateOrderResult{}, err
	}

	candidates, err := h.candidates.Candidates(ctx, o, cmd.MaxDistance())
	if err != nil {
		if !errors.Is(err, errs.ErrStoreUnavailable) {
			return CreateOrderResult{}, err
		}
		h.logger.WarnContext(ctx, "candidate lookup failed, order stays pending",
			"order_id", o.ID().String(), "error", err)
		candidates = []*courier.Courier{}
	}

	if h.metrics != nil {
		h.metrics.OrderCreated(len(candidates))
	}
	h.logger.InfoContext(ctx, "order created",
		"order_id", o.ID().String(), "customer_id", o.CustomerID(), "candidates", len(candidates))

	return CreateOrderResult{Order: o, Candidates: candidates}, nil
}
