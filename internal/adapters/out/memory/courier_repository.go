package memory

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/geoindex"
)

// CourierRepository keeps couriers in maps plus an R-tree over their
// locations. Stored couriers are private copies; callers never share state
// with the repository.
type CourierRepository struct {
	mu      sync.RWMutex
	byID    map[kernel.UUID]*courier.Courier
	byPhone map[string]kernel.UUID
	index   *geoindex.Index[kernel.UUID, *courier.Courier]
}

func NewCourierRepository() *CourierRepository {
	return &CourierRepository{
		byID:    make(map[kernel.UUID]*courier.Courier),
		byPhone: make(map[string]kernel.UUID),
		index:   geoindex.New[kernel.UUID, *courier.Courier](),
	}
}

func (r *CourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	if err := checkContext(ctx, "add courier"); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID()]; exists {
		return errs.NewObjectConflictError("courier", c.ID().String())
	}
	if err := r.checkPhoneLocked(c); err != nil {
		return err
	}
	r.storeLocked(c.Clone())
	return nil
}

func (r *CourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	if err := checkContext(ctx, "update courier"); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.byID[c.ID()]
	if !exists {
		return errs.NewObjectNotFoundError("courier", c.ID().String())
	}
	if err := r.checkPhoneLocked(c); err != nil {
		return err
	}
	if previous.Phone() != "" && previous.Phone() != c.Phone() {
		delete(r.byPhone, previous.Phone())
	}
	r.storeLocked(c.Clone())
	return nil
}

func (r *CourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := checkContext(ctx, "get courier"); err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("courier", id.String())
	}
	return c.Clone(), nil
}

func (r *CourierRepository) FindByPhone(ctx context.Context, phone string) (*courier.Courier, error) {
	if err := checkContext(ctx, "find courier by phone"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPhone[phone]
	if !ok || phone == "" {
		return nil, errs.NewObjectNotFoundError("phone", phone)
	}
	return r.byID[id].Clone(), nil
}

func (r *CourierRepository) FindAvailableNear(
	ctx context.Context,
	center kernel.GeoPoint,
	radiusMeters float64,
	limit int,
) ([]*courier.Courier, error) {
	if err := checkContext(ctx, "find available couriers"); err != nil {
		return nil, err
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*courier.Courier{}, nil
	}

	matches := r.index.Nearest(center.Longitude(), center.Latitude(), radiusMeters, limit,
		func(c *courier.Courier) bool { return c.IsAvailable() })

	found := make([]*courier.Courier, 0, len(matches))
	for _, m := range matches {
		found = append(found, m.Value.Clone())
	}
	return found, nil
}

func (r *CourierRepository) checkPhoneLocked(c *courier.Courier) error {
	if c.Phone() == "" {
		return nil
	}
	if owner, taken := r.byPhone[c.Phone()]; taken && !owner.IsEqual(c.ID()) {
		return errs.NewObjectConflictErrorWithCause("courier", c.ID().String(),
			errs.NewObjectConflictError("phone", c.Phone()))
	}
	return nil
}

func (r *CourierRepository) storeLocked(c *courier.Courier) {
	r.byID[c.ID()] = c
	if c.Phone() != "" {
		r.byPhone[c.Phone()] = c.ID()
	}
	r.index.Put(c.ID(), c.Location().Longitude(), c.Location().Latitude(), c)
}
