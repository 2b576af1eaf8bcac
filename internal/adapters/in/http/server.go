// Package http exposes the order fulfillment use cases over HTTP with echo.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fulfillment/internal/adapters/in/http/openapi"
	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handler is the shape shared by every command and query handler.
type Handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

type (
	OtpIssuer interface {
		Generate(length int) (string, error)
	}

	PushSender interface {
		SendPush(ctx context.Context, userID kernel.UserID, msg ports.PushMessage) notifications.PushResult
	}

	DeviceRegistry interface {
		Register(ctx context.Context, userID kernel.UserID, token string) error
	}
)

// UseCases are the application entry points served over HTTP.
type UseCases struct {
	CreateOrder          Handler[commands.CreateOrderCommand, commands.TransitionResult]
	ApproveOrder         Handler[commands.ApproveOrderCommand, commands.TransitionResult]
	CancelOrder          Handler[commands.CancelOrderCommand, commands.TransitionResult]
	MarkOutForDelivery   Handler[commands.MarkOutForDeliveryCommand, commands.TransitionResult]
	AssignDelivery       Handler[commands.AssignDeliveryCommand, commands.TransitionResult]
	UpdateDeliveryStatus Handler[commands.UpdateDeliveryStatusCommand, commands.TransitionResult]
	CreatePayment        Handler[commands.CreatePaymentCommand, commands.CreatePaymentResult]
	ConfirmPayment       Handler[commands.ConfirmPaymentCommand, commands.TransitionResult]
	SendNotification     Handler[commands.SendOrderNotificationCommand, notifications.Report]

	GetOrder        Handler[queries.GetOrderQuery, queries.OrderView]
	ListAssignments Handler[queries.ListDeliveryAssignmentsQuery, []queries.AssignmentView]

	Otp     OtpIssuer
	Push    PushSender
	Devices DeviceRegistry
}

// Server holds the HTTP handlers.
type Server struct {
	uc   UseCases
	auth *Authenticator
}

func NewServer(uc UseCases, auth *Authenticator) *Server {
	return &Server{uc: uc, auth: auth}
}

// Options configure the echo instance built by NewEcho.
type Options struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewEcho builds the echo instance with middleware and every route. The
// /api routes are validated against the embedded OpenAPI document, which is
// also served at /swagger/.
func NewEcho(s *Server, opts Options) (*echo.Echo, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("build request validator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			opts.Metrics.Request(v.RoutePath, strconv.Itoa(v.Status), float64(v.Latency.Microseconds())/1000)
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(opts.Gatherer)))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	s.Register(e, validate)
	return e, nil
}

// Register mounts the /api routes on e. Requests are authenticated before
// validate sees them.
func (s *Server) Register(e *echo.Echo, validate echo.MiddlewareFunc) {
	api := e.Group("/api", s.auth.Middleware(), validate)

	api.POST("/orders", s.CreateOrder, RequireRole(RoleCustomer))
	api.GET("/orders/:id", s.GetOrder)

	admin := api.Group("/admin/orders")
	admin.PUT("/:id/approve", s.ApproveOrder, RequireRole(RoleAdmin))
	admin.PUT("/:id/cancel", s.CancelOrder, RequireRole(RoleAdmin, RoleCustomer))
	admin.PUT("/:id/out-for-delivery", s.MarkOutForDelivery, RequireRole(RoleAdmin))
	admin.PUT("/:id/assign", s.AssignDelivery, RequireRole(RoleAdmin))

	delivery := api.Group("/delivery/assignments", RequireRole(RoleDelivery))
	delivery.GET("", s.ListAssignments)
	delivery.PUT("/:id/status", s.UpdateDeliveryStatus)

	payment := api.Group("/payment", RequireRole(RoleCustomer))
	payment.POST("/create-order", s.CreatePayment)
	payment.POST("/verify", s.VerifyPayment)

	notify := api.Group("/notifications")
	notify.POST("/order-confirmation", s.SendOrderConfirmation, RequireRole(RoleAdmin))
	notify.POST("/order-status-update", s.SendOrderStatusUpdate, RequireRole(RoleAdmin, RoleDelivery))
	notify.POST("/delivery-assignment", s.SendDeliveryAssignment, RequireRole(RoleAdmin))
	notify.POST("/generate-otp", s.GenerateOtp, RequireRole(RoleAdmin, RoleDelivery))
	notify.POST("/push", s.SendPush, RequireRole(RoleAdmin))
	notify.POST("/devices", s.RegisterDevice)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
