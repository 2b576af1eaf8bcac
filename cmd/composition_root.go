package cmd

import (
	"context"
	"fmt"
	"log/slog"

	httpin "fulfillment/internal/adapters/in/http"
	kafkain "fulfillment/internal/adapters/in/kafka"
	"fulfillment/internal/adapters/out/fcm"
	kafkaout "fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/userdirectory"
	"fulfillment/internal/adapters/out/razorpay"
	redisout "fulfillment/internal/adapters/out/redis"
	"fulfillment/internal/adapters/out/smtp"
	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	redis      *redis.Client
	publisher  *kafkaout.Publisher
	dispatcher *notifications.Dispatcher
	payments   *payments.Service
	effects    *commands.Effects
}

// NewCompositionRoot connects the external providers. Kafka is optional;
// everything else must be reachable at startup.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	rdb, err := redisout.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	email, err := smtp.New(smtp.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		Timeout:  cfg.NotificationTimeout,
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("smtp: %w", err)
	}
	push, err := fcm.New(ctx, cfg.FCMProjectID, cfg.FCMCredentialsFile)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	dispatcher, err := notifications.NewDispatcher(
		email,
		push,
		redisout.NewDeviceTokenStore(rdb),
		userdirectory.New(gormDB),
		cfg.NotificationTimeout,
		m,
		logger,
	)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	gateway, err := razorpay.New(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayTimeout, logger)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("razorpay: %w", err)
	}
	paymentService, err := payments.NewService(gateway, cfg.RazorpayKeySecret, m, logger)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	root := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		registry:   registry,
		metrics:    m,
		redis:      rdb,
		dispatcher: dispatcher,
		payments:   paymentService,
	}

	// A typed nil would make Effects publish into a nil writer.
	var events ports.OrderEventPublisher
	if cfg.KafkaEnabled() {
		root.publisher = kafkaout.NewPublisher(kafkaout.ParseBrokers(cfg.KafkaHost), cfg.KafkaOrderChangedTopic, 0)
		events = root.publisher
	}
	root.effects = commands.NewEffects(dispatcher, events, m, logger)
	return root, nil
}

// Close releases the provider connections.
func (c *CompositionRoot) Close() {
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.logger.Error("Failed to close kafka publisher", "error", err)
		}
	}
	if err := c.redis.Close(); err != nil {
		c.logger.Error("Failed to close redis client", "error", err)
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.effects)
}

func (c *CompositionRoot) CreateApproveOrderCommandHandler() commands.ApproveOrderCommandHandler {
	return commands.NewApproveOrderCommandHandler(c.orderUoWFactory(), c.effects)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.effects)
}

func (c *CompositionRoot) CreateAssignDeliveryCommandHandler() commands.AssignDeliveryCommandHandler {
	return commands.NewAssignDeliveryCommandHandler(c.orderUoWFactory(), c.effects)
}

func (c *CompositionRoot) CreateMarkOutForDeliveryCommandHandler() commands.MarkOutForDeliveryCommandHandler {
	return commands.NewMarkOutForDeliveryCommandHandler(c.orderUoWFactory(), services.NewOtpGenerator(), c.effects)
}

func (c *CompositionRoot) CreateConfirmDeliveredCommandHandler() commands.ConfirmDeliveredCommandHandler {
	limiter := redisout.NewOtpAttemptLimiter(c.redis, c.cfg.OtpMaxAttempts, c.cfg.OtpAttemptWindow)
	return commands.NewConfirmDeliveredCommandHandler(c.orderUoWFactory(), limiter, c.effects, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	return commands.NewUpdateDeliveryStatusCommandHandler(
		c.CreateMarkOutForDeliveryCommandHandler(),
		c.CreateConfirmDeliveredCommandHandler(),
	)
}

func (c *CompositionRoot) CreateCreatePaymentCommandHandler() commands.CreatePaymentCommandHandler {
	return commands.NewCreatePaymentCommandHandler(c.orderUoWFactory(), c.payments)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.orderUoWFactory(), c.payments, c.effects)
}

func (c *CompositionRoot) CreateSendOrderNotificationCommandHandler() commands.SendOrderNotificationCommandHandler {
	return commands.NewSendOrderNotificationCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateExpireUnpaidOrderCommandHandler() commands.ExpireUnpaidOrderCommandHandler {
	return commands.NewExpireUnpaidOrderCommandHandler(c.orderUoWFactory(), c.effects)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListUnpaidOrdersQueryHandler() queries.ListUnpaidOrdersQueryHandler {
	return queries.NewListUnpaidOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListDeliveryAssignmentsQueryHandler() queries.ListDeliveryAssignmentsQueryHandler {
	return queries.NewListDeliveryAssignmentsQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the echo instance with every route mounted.
func (c *CompositionRoot) CreateHTTPServer() (*echo.Echo, error) {
	auth, err := httpin.NewAuthenticator(c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	server := httpin.NewServer(httpin.UseCases{
		CreateOrder:          c.CreateCreateOrderCommandHandler(),
		ApproveOrder:         c.CreateApproveOrderCommandHandler(),
		CancelOrder:          c.CreateCancelOrderCommandHandler(),
		MarkOutForDelivery:   c.CreateMarkOutForDeliveryCommandHandler(),
		AssignDelivery:       c.CreateAssignDeliveryCommandHandler(),
		UpdateDeliveryStatus: c.CreateUpdateDeliveryStatusCommandHandler(),
		CreatePayment:        c.CreateCreatePaymentCommandHandler(),
		ConfirmPayment:       c.CreateConfirmPaymentCommandHandler(),
		SendNotification:     c.CreateSendOrderNotificationCommandHandler(),
		GetOrder:             c.CreateGetOrderQueryHandler(),
		ListAssignments:      c.CreateListDeliveryAssignmentsQueryHandler(),
		Otp:                  services.NewOtpGenerator(),
		Push:                 c.dispatcher,
		Devices:              redisout.NewDeviceTokenStore(c.redis),
	}, auth)
	return httpin.NewEcho(server, httpin.Options{Metrics: c.metrics, Gatherer: c.registry, Logger: c.logger})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewExpireUnpaidOrdersJob(
			c.CreateListUnpaidOrdersQueryHandler(),
			c.CreateExpireUnpaidOrderCommandHandler(),
			c.cfg.UnpaidOrderTTL,
			c.cfg.ExpireSchedule,
			c.logger,
		),
	)
}

// CreateCheckoutConsumer returns nil when Kafka is not configured.
func (c *CompositionRoot) CreateCheckoutConsumer() *kafkain.CheckoutConsumer {
	if !c.cfg.KafkaEnabled() {
		return nil
	}
	return kafkain.NewCheckoutConsumer(
		kafkaout.ParseBrokers(c.cfg.KafkaHost),
		c.cfg.KafkaConsumerGroup,
		c.cfg.KafkaCheckoutConfirmedTopic,
		c.CreateCreateOrderCommandHandler(),
		c.logger,
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
