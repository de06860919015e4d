// Package redisgeo mirrors available courier positions into a Redis geo set
// so that proximity lookups do not scan the courier table.
package redisgeo

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/go-redis/redis/v8"
)

// DefaultKey is the sorted set holding courier positions.
const DefaultKey = "dispatch:couriers:available"

var _ ports.CourierLocator = (*Locator)(nil)

// Locator implements ports.CourierLocator with GEOADD, GEORADIUS and ZREM.
type Locator struct {
	client  redis.UniversalClient
	key     string
	timeout time.Duration
}

// NewLocator uses key as the geo set; an empty key means DefaultKey.
func NewLocator(client redis.UniversalClient, key string, timeout time.Duration) *Locator {
	if key == "" {
		key = DefaultKey
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Locator{client: client, key: key, timeout: timeout}
}

// Connect opens a client for addr and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (l *Locator) Track(ctx context.Context, id kernel.UUID, location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	err := l.client.GeoAdd(ctx, l.key, &redis.GeoLocation{
		Name:      id.String(),
		Longitude: location.Longitude(),
		Latitude:  location.Latitude(),
	}).Err()
	if err != nil {
		return errs.NewStoreUnavailableError("track courier", err)
	}
	return nil
}

func (l *Locator) Forget(ctx context.Context, id kernel.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.client.ZRem(ctx, l.key, id.String()).Err(); err != nil {
		return errs.NewStoreUnavailableError("forget courier", err)
	}
	return nil
}

// Nearby returns ids nearest first. Members that are not UUIDs are skipped.
func (l *Locator) Nearby(
	ctx context.Context,
	center kernel.GeoPoint,
	radiusMeters float64,
	limit int,
) ([]kernel.UUID, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	query := &redis.GeoRadiusQuery{
		Radius: radiusMeters,
		Unit:   "m",
		Sort:   "ASC",
	}
	if limit > 0 {
		query.Count = limit
	}

	locations, err := l.client.GeoRadius(ctx, l.key, center.Longitude(), center.Latitude(), query).Result()
	if err != nil {
		return nil, errs.NewStoreUnavailableError("find nearby couriers", err)
	}

	ids := make([]kernel.UUID, 0, len(locations))
	for _, loc := range locations {
		id, parseErr := kernel.UUIDFromString(loc.Name)
		if parseErr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
