package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/migrations"
	"dispatch/internal/adapters/out/redisgeo"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// CompositionRoot owns the long-lived dependencies of the service and builds
// the handlers that use them.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	store    ports.Store
	closers  []func() error
	registry *prometheus.Registry
	sink     *metrics.PromSink

	couriers *services.CourierRegistry
	matcher  *services.DispatchMatcher
	claims   *services.ClaimCoordinator
}

// NewCompositionRoot opens the configured store (and the Redis geo cache when
// configured) and wires the domain services over it. Close releases what it
// opened.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{cfg: cfg, logger: logger}

	if err := c.openStore(); err != nil {
		return nil, errors.Join(err, c.Close())
	}

	locator, err := c.openLocator(ctx)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if c.sink, err = metrics.NewPromSink(c.registry); err != nil {
		return nil, errors.Join(err, c.Close())
	}

	c.couriers = services.NewCourierRegistry(c.store.CourierRepository(), locator, logger)
	c.matcher = services.NewDispatchMatcher(c.couriers, c.store.OrderRepository(), cfg.MatcherSettings(), logger)
	c.claims = services.NewClaimCoordinator(c.couriers, c.store.OrderRepository(), c.sink, logger)
	return c, nil
}

func (c *CompositionRoot) openStore() error {
	switch c.cfg.StoreDriver {
	case StoreDriverMemory:
		c.logger.Warn("using the in-memory store; state is lost on restart and not shared between processes")
		c.store = memory.NewStore()
		return nil
	case StoreDriverPostgres:
		if c.cfg.MigrateOnStart {
			if err := migrations.Up(c.cfg.DatabaseURL, c.logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		store, err := postgres.Open(c.cfg.DatabaseURL, c.cfg.StoreTimeout, c.logger)
		if err != nil {
			return err
		}
		c.store = store
		c.closers = append(c.closers, store.Close)
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", c.cfg.StoreDriver)
	}
}

func (c *CompositionRoot) openLocator(ctx context.Context) (ports.CourierLocator, error) {
	if c.cfg.RedisAddr == "" {
		return nil, nil
	}
	client, err := redisgeo.Connect(ctx, c.cfg.RedisAddr, c.cfg.RedisPassword, c.cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.closers = append(c.closers, client.Close)
	c.logger.Info("courier geo cache enabled", "addr", c.cfg.RedisAddr, "key", c.cfg.RedisKey)
	return redisgeo.NewLocator(client, c.cfg.RedisKey, c.cfg.StoreTimeout), nil
}

func (c *CompositionRoot) CreateUpdateCourierLocationCommandHandler() commands.UpdateCourierLocationCommandHandler {
	return commands.NewUpdateCourierLocationCommandHandler(c.couriers)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.store.OrderRepository(), c.matcher, c.sink, c.logger)
}

func (c *CompositionRoot) CreateSetOrderStatusCommandHandler() commands.SetOrderStatusCommandHandler {
	return commands.NewSetOrderStatusCommandHandler(c.claims)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.claims)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(c.claims)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.store.OrderRepository())
}

func (c *CompositionRoot) CreateListCustomerOrdersQueryHandler() queries.ListCustomerOrdersQueryHandler {
	return queries.NewListCustomerOrdersQueryHandler(c.store.OrderRepository())
}

func (c *CompositionRoot) CreateListNearbyPendingOrdersQueryHandler() queries.ListNearbyPendingOrdersQueryHandler {
	return queries.NewListNearbyPendingOrdersQueryHandler(c.couriers, c.matcher)
}

func (c *CompositionRoot) CreateCountOrdersByStatusQueryHandler() queries.CountOrdersByStatusQueryHandler {
	return queries.NewCountOrdersByStatusQueryHandler(c.store.OrderRepository())
}

// CreateRouter builds the HTTP server with every route registered.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	recorder, err := metrics.NewHTTPRecorder(c.registry)
	if err != nil {
		return nil, err
	}

	server := httpadapter.NewServer(httpadapter.Handlers{
		UpdateCourierLocation:   c.CreateUpdateCourierLocationCommandHandler(),
		CreateOrder:             c.CreateCreateOrderCommandHandler(),
		SetOrderStatus:          c.CreateSetOrderStatusCommandHandler(),
		AcceptOrder:             c.CreateAcceptOrderCommandHandler(),
		RejectOrder:             c.CreateRejectOrderCommandHandler(),
		GetOrder:                c.CreateGetOrderQueryHandler(),
		ListCustomerOrders:      c.CreateListCustomerOrdersQueryHandler(),
		ListNearbyPendingOrders: c.CreateListNearbyPendingOrdersQueryHandler(),
	}, c.store, c.logger)

	return httpadapter.NewRouter(server, httpadapter.RouterOptions{
		Gatherer:       c.registry,
		Recorder:       recorder,
		RequestTimeout: c.cfg.RequestTimeout,
	}), nil
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	return jobs.NewJobManager(
		c.CreateCountOrdersByStatusQueryHandler(),
		c.sink,
		jobs.Settings{BacklogSchedule: c.cfg.BacklogSchedule, RunTimeout: c.cfg.StoreTimeout},
		c.logger,
	)
}

// Close releases the store and cache connections in reverse order of opening.
func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	c.closers = nil
	return errors.Join(errList...)
}
