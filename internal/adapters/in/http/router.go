package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultRequestTimeout bounds the context of every API request.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultBodyLimit caps request bodies, in echo's size notation.
	DefaultBodyLimit = "1M"
)

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// RouterOptions configures NewRouter. Zero values disable /metrics and request
// recording and use DefaultRequestTimeout and DefaultBodyLimit.
type RouterOptions struct {
	Gatherer       prometheus.Gatherer
	Recorder       RequestRecorder
	RequestTimeout time.Duration
	BodyLimit      string
}

// NewRouter builds the echo instance with base middleware and all routes.
func NewRouter(s *Server, opts RouterOptions) *echo.Echo {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = DefaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(s.logger)

	e.Use(middleware.RequestID())
	e.Use(requestLogger(s.logger, opts.Recorder))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/health", s.Health)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api", middleware.ContextTimeout(opts.RequestTimeout))

	api.POST("/couriers/location", s.UpdateCourierLocation)
	api.GET("/couriers/:courierId/nearby-orders", s.ListNearbyPendingOrders)
	api.POST("/couriers/:courierId/orders/:orderId/accept", s.AcceptOrder)
	api.POST("/couriers/:courierId/orders/:orderId/reject", s.RejectOrder)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListCustomerOrders)
	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/status", s.SetOrderStatus)

	return e
}

func requestLogger(logger *slog.Logger, recorder RequestRecorder) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if recorder != nil && v.RoutePath != "" {
				recorder.ObserveRequest(v.Method, v.RoutePath, v.Status, v.Latency)
			}

			level := slog.LevelInfo
			if v.Status >= 500 {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}
