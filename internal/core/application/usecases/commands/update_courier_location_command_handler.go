package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/services"
)

// UpdateCourierLocationCommandHandler records location pings. A courier seen
// for the first time is registered.
type UpdateCourierLocationCommandHandler struct {
	couriers CourierUpserter
}

func NewUpdateCourierLocationCommandHandler(couriers CourierUpserter) UpdateCourierLocationCommandHandler {
	return UpdateCourierLocationCommandHandler{couriers: couriers}
}

// Handle returns the courier as stored after the ping.
func (h UpdateCourierLocationCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateCourierLocationCommand,
) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.couriers.Upsert(ctx, services.LocationPing{
		CourierID: cmd.CourierID(),
		Profile:   cmd.Profile(),
		Available: cmd.IsAvailable(),
		Location:  cmd.Location(),
	})
}
