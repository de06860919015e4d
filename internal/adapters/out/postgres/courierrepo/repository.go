package courierrepo

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"dispatch/internal/adapters/out/postgres/dbcall"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/geo"
	"dispatch/internal/pkg/geocell"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var _ ports.CourierRepository = (*GormCourierRepository)(nil)

// GormCourierRepository implements ports.CourierRepository on postgres.
type GormCourierRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormCourierRepository expects db to be opened with TranslateError so that
// unique violations surface as gorm.ErrDuplicatedKey.
func NewGormCourierRepository(db *gorm.DB, timeout time.Duration) *GormCourierRepository {
	return &GormCourierRepository{db: db, timeout: timeout}
}

func (r *GormCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(c)
	err := r.db.WithContext(ctx).Create(&dto).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewObjectConflictErrorWithCause("courier", c.ID().String(), err)
	}
	return dbcall.Translate("add courier", err)
}

func (r *GormCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	dto := fromDomain(c)
	// Select("*") writes zero values too, so is_available can become false.
	result := r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return errs.NewObjectConflictErrorWithCause("courier phone", c.Phone(), result.Error)
	}
	if result.Error != nil {
		return dbcall.Translate("update courier", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", c.ID().String())
	}
	return nil
}

func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "get courier", "courier", id.String(), "id = ?", id.Bytes())
}

func (r *GormCourierRepository) FindByPhone(ctx context.Context, phone string) (*courier.Courier, error) {
	if phone == "" {
		return nil, errs.NewValueIsRequiredError("phone")
	}
	return r.first(ctx, "find courier by phone", "courier phone", phone, "phone = ?", phone)
}

// FindAvailableNear narrows the table with the geohash cover of the circle and
// then applies the exact great-circle filter.
func (r *GormCourierRepository) FindAvailableNear(
	ctx context.Context,
	center kernel.GeoPoint,
	radiusMeters float64,
	limit int,
) ([]*courier.Courier, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).Model(&CourierDTO{}).Where("is_available")
	if prefixes, ok := geocell.Cover(center.Longitude(), center.Latitude(), radiusMeters); ok {
		query = query.Where("geohash LIKE ANY (?)", likePatterns(prefixes))
	}

	var dtos []CourierDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, dbcall.Translate("find available couriers", err)
	}

	type candidate struct {
		dto      CourierDTO
		distance float64
	}
	candidates := make([]candidate, 0, len(dtos))
	for _, dto := range dtos {
		d := geo.Distance(center.Longitude(), center.Latitude(), dto.Longitude, dto.Latitude)
		if d <= radiusMeters {
			candidates = append(candidates, candidate{dto: dto, distance: d})
		}
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.distance, b.distance)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]*courier.Courier, 0, len(candidates))
	for _, c := range candidates {
		domain, err := toDomain(c.dto)
		if err != nil {
			return nil, err
		}
		result = append(result, domain)
	}
	return result, nil
}

func (r *GormCourierRepository) first(
	ctx context.Context,
	operation, param, key string,
	query string,
	args ...any,
) (*courier.Courier, error) {
	ctx, cancel := dbcall.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dto CourierDTO
	err := r.db.WithContext(ctx).Where(query, args...).Take(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError(param, key)
	}
	if err != nil {
		return nil, dbcall.Translate(operation, err)
	}
	return toDomain(dto)
}

func likePatterns(prefixes []string) pq.StringArray {
	patterns := make(pq.StringArray, len(prefixes))
	for i, p := range prefixes {
		patterns[i] = p + "%"
	}
	return patterns
}
