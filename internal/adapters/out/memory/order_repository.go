package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/geoindex"
)

type storedOrder struct {
	order *order.Order
	// seq orders records created within the same clock tick.
	seq uint64
}

// OrderRepository keeps orders in a map plus an R-tree over pickup points.
// Every mutation replaces the stored order with an updated copy while holding
// the write lock, so a status check and the write that depends on it are one
// indivisible step.
type OrderRepository struct {
	mu      sync.RWMutex
	byID    map[kernel.UUID]*storedOrder
	pickups *geoindex.Index[kernel.UUID, kernel.UUID]
	nextSeq uint64
	now     func() time.Time
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		byID:    make(map[kernel.UUID]*storedOrder),
		pickups: geoindex.New[kernel.UUID, kernel.UUID](),
		now:     time.Now,
	}
}

func (r *OrderRepository) Add(ctx context.Context, o *order.Order) error {
	if err := checkContext(ctx, "add order"); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID()]; exists {
		return errs.NewObjectConflictError("order", o.ID().String())
	}
	r.nextSeq++
	r.byID[o.ID()] = &storedOrder{order: o.Clone(), seq: r.nextSeq}
	pickup := o.Pickup().Geo()
	r.pickups.Put(o.ID(), pickup.Longitude(), pickup.Latitude(), o.ID())
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := checkContext(ctx, "get order"); err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return s.order.Clone(), nil
}

func (r *OrderRepository) TransitionIfStatus(
	ctx context.Context,
	id kernel.UUID,
	t order.Transition,
) (*order.Order, bool, error) {
	if err := checkContext(ctx, "transition order"); err != nil {
		return nil, false, err
	}
	if err := id.Validate(); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, false, errs.NewObjectNotFoundError("order", id.String())
	}
	if s.order.Status() != t.From() {
		return s.order.Clone(), false, nil
	}

	next := s.order.Clone()
	if err := next.Apply(t, r.now()); err != nil {
		return nil, false, err
	}
	s.order = next
	return next.Clone(), true, nil
}

func (r *OrderRepository) AddRejection(
	ctx context.Context,
	id kernel.UUID,
	courierID kernel.UUID,
) (*order.Order, bool, error) {
	if err := checkContext(ctx, "reject order"); err != nil {
		return nil, false, err
	}
	if err := id.Validate(); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, false, errs.NewObjectNotFoundError("order", id.String())
	}
	if s.order.Status() != order.Pending {
		return s.order.Clone(), false, nil
	}

	next := s.order.Clone()
	if _, err := next.Reject(courierID, r.now()); err != nil {
		return nil, false, err
	}
	s.order = next
	return next.Clone(), true, nil
}

func (r *OrderRepository) FindPendingNear(
	ctx context.Context,
	center kernel.GeoPoint,
	radiusMeters float64,
	excludeRejectedBy kernel.UUID,
	limit int,
) ([]*order.Order, error) {
	if err := checkContext(ctx, "find pending orders"); err != nil {
		return nil, err
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.pickups.Nearest(center.Longitude(), center.Latitude(), radiusMeters, 0, func(id kernel.UUID) bool {
		o := r.byID[id].order
		return o.Status() == order.Pending && !o.IsRejectedBy(excludeRejectedBy)
	})

	found := make([]*storedOrder, 0, len(matches))
	for _, m := range matches {
		found = append(found, r.byID[m.Value])
	}
	return newestFirst(found, limit), nil
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID string, limit int) ([]*order.Order, error) {
	if err := checkContext(ctx, "find customer orders"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]*storedOrder, 0)
	for _, s := range r.byID {
		if s.order.CustomerID() == customerID {
			found = append(found, s)
		}
	}
	return newestFirst(found, limit), nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	if err := checkContext(ctx, "count orders"); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.byID {
		if s.order.Status() == status {
			n++
		}
	}
	return n, nil
}

// newestFirst sorts by creation time, then insertion order, both descending,
// and returns clones of at most limit orders. limit <= 0 means no limit.
func newestFirst(found []*storedOrder, limit int) []*order.Order {
	slices.SortFunc(found, func(a, b *storedOrder) int {
		if c := b.order.CreatedAt().Compare(a.order.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	out := make([]*order.Order, 0, len(found))
	for _, s := range found {
		out = append(out, s.order.Clone())
	}
	return out
}
