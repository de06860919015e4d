package services

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// upsertAttempts bounds the lookup/create loop when two first pings for the
// same courier race each other.
const upsertAttempts = 2

// ErrPhoneRegisteredToOtherCourier is the cause attached when a ping names one
// courier but carries the phone of another.
var ErrPhoneRegisteredToOtherCourier = errors.New("phone is registered to another courier")

// LocationPing is one location report from a courier app.
type LocationPing struct {
	// CourierID identifies the courier when known; otherwise Profile.Phone does.
	CourierID *kernel.UUID
	Profile   courier.Profile
	Available bool
	Location  kernel.GeoPoint
}

// CourierRegistry keeps courier records current and answers "who is available
// near here". When a CourierLocator is configured it is kept in sync with
// every ping and consulted first for proximity queries; the repository stays
// the source of truth.
type CourierRegistry struct {
	couriers ports.CourierRepository
	locator  ports.CourierLocator
	logger   *slog.Logger
	now      func() time.Time
}

// NewCourierRegistry creates a registry. locator may be nil.
func NewCourierRegistry(
	couriers ports.CourierRepository,
	locator ports.CourierLocator,
	logger *slog.Logger,
) *CourierRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourierRegistry{
		couriers: couriers,
		locator:  locator,
		logger:   logger.With("component", "CourierRegistry"),
		now:      time.Now,
	}
}

// Upsert applies a location ping. With a courier id the record with that id is
// updated, or created under that id if absent; otherwise the courier is found
// by phone and created when no courier has that phone yet. lastSeenAt is
// always refreshed.
func (r *CourierRegistry) Upsert(ctx context.Context, ping LocationPing) (*courier.Courier, error) {
	if err := ping.Location.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("location.coordinates", err)
	}

	phone := strings.TrimSpace(ping.Profile.Phone)
	if ping.CourierID == nil && phone == "" {
		return nil, errs.NewValueIsRequiredError("courierId or phone")
	}
	if ping.CourierID != nil {
		if err := ping.CourierID.Validate(); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for range upsertAttempts {
		c, err := r.upsertOnce(ctx, ping, phone)
		if err == nil {
			r.syncLocator(ctx, c)
			return c, nil
		}
		if !errors.Is(err, errs.ErrObjectConflict) {
			return nil, err
		}
		taken, ownerErr := r.phoneOwnedByOther(ctx, ping.CourierID, phone)
		if ownerErr != nil {
			return nil, ownerErr
		}
		if taken {
			return nil, errs.NewValueIsInvalidErrorWithCause("phone", ErrPhoneRegisteredToOtherCourier)
		}
		// Someone else created the same courier between our lookup and insert.
		lastErr = err
	}
	return nil, lastErr
}

// phoneOwnedByOther reports whether phone already belongs to a courier other
// than id. Without an id the conflict can only be a concurrent first ping.
func (r *CourierRegistry) phoneOwnedByOther(ctx context.Context, id *kernel.UUID, phone string) (bool, error) {
	if id == nil || phone == "" {
		return false, nil
	}
	owner, err := r.couriers.FindByPhone(ctx, phone)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return false, nil
	case err != nil:
		return false, err
	default:
		return !owner.ID().IsEqual(*id), nil
	}
}

func (r *CourierRegistry) upsertOnce(ctx context.Context, ping LocationPing, phone string) (*courier.Courier, error) {
	now := r.now()

	existing, err := r.lookup(ctx, ping.CourierID, phone)
	switch {
	case err == nil:
		if err = existing.Ping(ping.Profile, ping.Available, ping.Location, now); err != nil {
			return nil, err
		}
		if err = r.couriers.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil

	case errors.Is(err, errs.ErrObjectNotFound):
		id := kernel.NewUUID()
		if ping.CourierID != nil {
			id = *ping.CourierID
		}
		created, err := courier.NewCourier(id, ping.Profile, ping.Available, ping.Location, now)
		if err != nil {
			return nil, err
		}
		if err = r.couriers.Add(ctx, created); err != nil {
			return nil, err
		}
		r.logger.InfoContext(ctx, "courier registered", "courier_id", id.String())
		return created, nil

	default:
		return nil, err
	}
}

func (r *CourierRegistry) lookup(ctx context.Context, id *kernel.UUID, phone string) (*courier.Courier, error) {
	if id != nil {
		return r.couriers.Get(ctx, *id)
	}
	return r.couriers.FindByPhone(ctx, phone)
}

func (r *CourierRegistry) syncLocator(ctx context.Context, c *courier.Courier) {
	if r.locator == nil {
		return
	}

	var err error
	if c.IsAvailable() {
		err = r.locator.Track(ctx, c.ID(), c.Location())
	} else {
		err = r.locator.Forget(ctx, c.ID())
	}
	if err != nil {
		r.logger.WarnContext(ctx, "courier locator update failed",
			"courier_id", c.ID().String(), "error", err)
	}
}

// Get returns the courier or *errs.ObjectNotFoundError.
func (r *CourierRegistry) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	return r.couriers.Get(ctx, id)
}

// FindAvailableNear returns up to limit available couriers within
// radiusMeters of center, nearest first.
func (r *CourierRegistry) FindAvailableNear(
	ctx context.Context,
	center kernel.GeoPoint,
	radiusMeters float64,
	limit int,
) ([]*courier.Courier, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if err := kernel.ValidateSearchRadius(radiusMeters); err != nil {
		return nil, err
	}

	if r.locator != nil && limit > 0 {
		found, err := r.findViaLocator(ctx, center, radiusMeters, limit)
		switch {
		case err != nil:
			r.logger.WarnContext(ctx, "courier locator query failed, using store", "error", err)
		case len(found) < limit:
			// The locator may have missed pings; only a full answer skips the store.
			r.logger.DebugContext(ctx, "courier locator answer short, using store",
				"found", len(found), "limit", limit)
		default:
			return found, nil
		}
	}

	return r.couriers.FindAvailableNear(ctx, center, radiusMeters, limit)
}

// findViaLocator asks the locator for twice the wanted number of ids, since
// some may be stale, and confirms each one against the repository.
func (r *CourierRegistry) findViaLocator(
	ctx context.Context,
	center kernel.GeoPoint,
	radiusMeters float64,
	limit int,
) ([]*courier.Courier, error) {
	ids, err := r.locator.Nearby(ctx, center, radiusMeters, 2*limit)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		courier  *courier.Courier
		distance float64
	}
	candidates := make([]candidate, 0, len(ids))
	for _, id := range ids {
		c, err := r.couriers.Get(ctx, id)
		if errors.Is(err, errs.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !c.IsAvailable() {
			continue
		}
		d, err := c.Location().DistanceTo(center)
		if err != nil || d > radiusMeters {
			continue
		}
		candidates = append(candidates, candidate{courier: c, distance: d})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.distance, b.distance)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	found := make([]*courier.Courier, 0, len(candidates))
	for _, c := range candidates {
		found = append(found, c.courier)
	}
	return found, nil
}
