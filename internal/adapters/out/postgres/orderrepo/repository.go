package orderrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/dbcall"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/geo"
	"dispatch/internal/pkg/geocell"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.OrderRepository = (*GormOrderRepository)(nil)

// GormOrderRepository implements ports.OrderRepository on postgres.
type GormOrderRepository struct {
	db      *gorm.DB
	timeout time.Duration
	now     func() time.Time
}

func NewGormOrderRepository(db *gorm.DB, timeout time.Duration) *GormOrderRepository {
	return &GormOrderRepository{db: db, timeout: timeout, now: time.Now}
}

func (r *GormOrderRepository) Add(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(o)
	err := r.db.WithContext(ctx).Create(&dto).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewObjectConflictErrorWithCause("order", o.ID().String(), err)
	}
	return dbcall.Translate("add order", err)
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.get(ctx, id)
}

// TransitionIfStatus is one UPDATE guarded by the expected status. When no row
// matches, a follow-up read tells an unknown id apart from a lost race.
func (r *GormOrderRepository) TransitionIfStatus(
	ctx context.Context,
	id kernel.UUID,
	t order.Transition,
) (*order.Order, bool, error) {
	if err := id.Validate(); err != nil {
		return nil, false, err
	}
	if err := t.From().CanTransitionTo(t.To()); err != nil {
		return nil, false, err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	updates := map[string]any{
		"status":     t.To().String(),
		"updated_at": r.now().UTC(),
	}
	switch {
	case t.AssignsCourier():
		updates["assigned_courier_id"] = t.CourierID().Bytes()
	case t.ClearsCourier():
		updates["assigned_courier_id"] = nil
	}

	return r.updateWhere(ctx, id, "transition order", updates, "id = ? AND status = ?", id.Bytes(), t.From().String())
}

// AddRejection appends courierID to rejected_by unless it is already there.
// Repeating it neither duplicates the entry nor moves updated_at.
func (r *GormOrderRepository) AddRejection(
	ctx context.Context,
	id kernel.UUID,
	courierID kernel.UUID,
) (*order.Order, bool, error) {
	if err := errors.Join(id.Validate(), courierID.Validate()); err != nil {
		return nil, false, err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	courier := courierID.String()
	updates := map[string]any{
		"rejected_by": gorm.Expr(
			"CASE WHEN ?::text = ANY(rejected_by) THEN rejected_by ELSE array_append(rejected_by, ?::text) END",
			courier, courier,
		),
		"updated_at": gorm.Expr(
			"CASE WHEN ?::text = ANY(rejected_by) THEN updated_at ELSE ?::timestamptz END",
			courier, r.now().UTC(),
		),
	}

	return r.updateWhere(ctx, id, "reject order", updates, "id = ? AND status = ?", id.Bytes(), order.Pending.String())
}

// FindPendingNear walks pending orders newest first, restricted by the geohash
// cover of the circle, and keeps those whose pickup is within radiusMeters
// until limit is reached.
func (r *GormOrderRepository) FindPendingNear(
	ctx context.Context,
	center kernel.GeoPoint,
	radiusMeters float64,
	excludeRejectedBy kernel.UUID,
	limit int,
) ([]*order.Order, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("status = ?", order.Pending.String()).
		Where("NOT (?::text = ANY(rejected_by))", excludeRejectedBy.String())
	if prefixes, ok := geocell.Cover(center.Longitude(), center.Latitude(), radiusMeters); ok {
		query = query.Where("pickup_geohash LIKE ANY (?)", likePatterns(prefixes))
	}

	rows, err := query.Order("created_at DESC, seq DESC").Rows()
	if err != nil {
		return nil, dbcall.Translate("find pending orders", err)
	}
	defer rows.Close()

	result := make([]*order.Order, 0)
	for rows.Next() {
		var dto OrderDTO
		if err = r.db.ScanRows(rows, &dto); err != nil {
			return nil, dbcall.Translate("find pending orders", err)
		}
		d := geo.Distance(center.Longitude(), center.Latitude(), dto.Pickup.Longitude, dto.Pickup.Latitude)
		if !(d <= radiusMeters) {
			continue
		}
		o, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		result = append(result, o)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	if err = rows.Err(); err != nil {
		return nil, dbcall.Translate("find pending orders", err)
	}
	return result, nil
}

func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID string, limit int) ([]*order.Order, error) {
	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []OrderDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, dbcall.Translate("find customer orders", err)
	}
	return toDomainAll(dtos)
}

func (r *GormOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	if err := status.Validate(); err != nil {
		return 0, err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("status = ?", status.String()).Count(&n).Error
	return n, dbcall.Translate("count orders", err)
}

func (r *GormOrderRepository) updateWhere(
	ctx context.Context,
	id kernel.UUID,
	operation string,
	updates map[string]any,
	condition string,
	args ...any,
) (*order.Order, bool, error) {
	var updated []OrderDTO
	result := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where(condition, args...).
		Updates(updates)
	if result.Error != nil {
		return nil, false, dbcall.Translate(operation, result.Error)
	}

	if result.RowsAffected == 0 || len(updated) == 0 {
		current, err := r.get(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}

	o, err := toDomain(updated[0])
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (r *GormOrderRepository) get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).Where("id = ?", id.Bytes()).Take(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	if err != nil {
		return nil, dbcall.Translate("get order", err)
	}
	return toDomain(dto)
}

func toDomainAll(dtos []OrderDTO) ([]*order.Order, error) {
	result := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

func likePatterns(prefixes []string) pq.StringArray {
	patterns := make(pq.StringArray, len(prefixes))
	for i, p := range prefixes {
		patterns[i] = p + "%"
	}
	return patterns
}
