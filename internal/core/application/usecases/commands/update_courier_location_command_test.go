package commands_test

import (
	"errors"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateCourierLocationCommand(t *testing.T) {
	id := kernel.NewUUID()
	location := point(t, 77.2091, 28.6140)

	tests := []struct {
		name      string
		courierID *kernel.UUID
		profile   courier.Profile
		location  kernel.GeoPoint
		wantErr   error
		wantParam string
	}{
		{name: "by id", courierID: &id, location: location},
		{name: "by phone", profile: courier.Profile{Phone: " +911 "}, location: location},
		{
			name:      "neither id nor phone",
			profile:   courier.Profile{Name: "Asha"},
			location:  location,
			wantErr:   errs.ErrValueIsRequired,
			wantParam: "courierId or phone",
		},
		{
			name:      "missing location",
			courierID: &id,
			wantErr:   errs.ErrValueIsRequired,
			wantParam: "location.coordinates",
		},
		{
			name:      "nil uuid",
			courierID: &kernel.UUID{},
			location:  location,
			wantErr:   errs.ErrValueIsInvalid,
			wantParam: "courierId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := commands.NewUpdateCourierLocationCommand(tt.courierID, tt.profile, true, tt.location)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.wantParam)
				assert.Error(t, cmd.Validate())
				return
			}
			require.NoError(t, err)
			assert.NoError(t, cmd.Validate())
			assert.True(t, cmd.IsAvailable())
		})
	}
}

func TestNewUpdateCourierLocationCommand_TrimsProfile(t *testing.T) {
	cmd, err := commands.NewUpdateCourierLocationCommand(
		nil,
		courier.Profile{Name: " Asha ", Phone: " +911 ", Vehicle: " bike "},
		false,
		point(t, 77.2, 28.6),
	)

	require.NoError(t, err)
	assert.Equal(t, courier.Profile{Name: "Asha", Phone: "+911", Vehicle: "bike"}, cmd.Profile())
	assert.Nil(t, cmd.CourierID())
	assert.False(t, cmd.IsAvailable())
}

func TestUpdateCourierLocationCommandHandler_Handle(t *testing.T) {
	t.Run("passes the ping to the registry", func(t *testing.T) {
		ctx := t.Context()
		id := kernel.NewUUID()
		location := point(t, 77.2091, 28.6140)
		cmd, err := commands.NewUpdateCourierLocationCommand(&id, courier.Profile{Name: "Asha"}, true, location)
		require.NoError(t, err)

		stored := newCourier(t, 77.2091, 28.6140)
		registry := new(MockCourierUpserter)
		registry.On("Upsert", ctx, mock.MatchedBy(func(p services.LocationPing) bool {
			return p.CourierID != nil && *p.CourierID == id &&
				p.Profile.Name == "Asha" && p.Available &&
				p.Location.Longitude() == 77.2091
		})).Return(stored, nil).Once()

		h := commands.NewUpdateCourierLocationCommandHandler(registry)
		got, err := h.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Same(t, stored, got)
		registry.AssertExpectations(t)
	})

	t.Run("rejects an unconstructed command", func(t *testing.T) {
		registry := new(MockCourierUpserter)
		h := commands.NewUpdateCourierLocationCommandHandler(registry)

		_, err := h.Handle(t.Context(), commands.UpdateCourierLocationCommand{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		registry.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("returns registry errors", func(t *testing.T) {
		ctx := t.Context()
		cmd, err := commands.NewUpdateCourierLocationCommand(nil, courier.Profile{Phone: "+911"}, true, point(t, 1, 1))
		require.NoError(t, err)
		storeErr := errs.NewStoreUnavailableError("update courier", errors.New("timeout"))

		registry := new(MockCourierUpserter)
		registry.On("Upsert", ctx, mock.Anything).Return(nil, storeErr).Once()

		_, err = commands.NewUpdateCourierLocationCommandHandler(registry).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrStoreUnavailable)
	})
}
