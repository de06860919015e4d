// Package postgres is the shared dispatch store: couriers and orders in
// PostgreSQL, accessed through gorm. Any number of service processes may use
// the same database; claims are decided by conditional UPDATEs.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/dbcall"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/ports"

	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ ports.Store = (*Store)(nil)

// Store hands out repositories that share one connection pool.
type Store struct {
	db       *gorm.DB
	timeout  time.Duration
	couriers *courierrepo.GormCourierRepository
	orders   *orderrepo.GormOrderRepository
}

// Open connects to dsn. timeout bounds every store call; zero means
// dbcall.DefaultTimeout.
func Open(dsn string, timeout time.Duration, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgresdriver.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	logger.Info("connected to postgres", "timeout", timeout)
	return NewStore(db, timeout), nil
}

// Config is the gorm configuration the repositories rely on. TranslateError
// turns unique violations into gorm.ErrDuplicatedKey.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func NewStore(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{
		db:       db,
		timeout:  timeout,
		couriers: courierrepo.NewGormCourierRepository(db, timeout),
		orders:   orderrepo.NewGormOrderRepository(db, timeout),
	}
}

func (s *Store) CourierRepository() ports.CourierRepository {
	return s.couriers
}

func (s *Store) OrderRepository() ports.OrderRepository {
	return s.orders
}

// Ping checks the connection within the store timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := dbcall.WithTimeout(ctx, s.timeout)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return dbcall.Translate("ping", err)
	}
	return dbcall.Translate("ping", sqlDB.PingContext(ctx))
}

// DB exposes the connection for read-only queries and maintenance.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
