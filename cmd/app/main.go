package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	defer app.Close()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	if consumer := app.CreateCheckoutConsumer(); consumer != nil {
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("Checkout consumer stopped", "error", err)
				stop()
			}
		}()
	}

	e, err := app.CreateHTTPServer()
	if err != nil {
		log.Fatalf("Failed to build HTTP server: %v", err)
	}
	addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)
	logger.Info("Starting HTTP server", "addr", addr)
	if err = httpin.Run(ctx, e, addr, configs.ShutdownTimeout); err != nil {
		logger.Error("HTTP server failed", "error", err)
	}
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	return cmd.Config{
		HTTPPort:        envOr("HTTP_PORT", "8080"),
		ShutdownTimeout: durationVariable("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intVariable("REDIS_DB", 0),

		KafkaHost:                   os.Getenv("KAFKA_HOST"),
		KafkaConsumerGroup:          envOr("KAFKA_CONSUMER_GROUP", "fulfillment"),
		KafkaCheckoutConfirmedTopic: os.Getenv("KAFKA_CHECKOUT_CONFIRMED_TOPIC"),
		KafkaOrderChangedTopic:      os.Getenv("KAFKA_ORDER_CHANGED_TOPIC"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     intVariable("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPFromName: os.Getenv("SMTP_FROM_NAME"),

		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),
		FCMCredentialsFile: os.Getenv("FCM_CREDENTIALS_FILE"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		GatewayTimeout:    durationVariable("GATEWAY_TIMEOUT", 10*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),

		UnpaidOrderTTL:      durationVariable("UNPAID_ORDER_TTL", 24*time.Hour),
		ExpireSchedule:      os.Getenv("EXPIRE_UNPAID_SCHEDULE"),
		OtpMaxAttempts:      int64(intVariable("OTP_MAX_ATTEMPTS", 5)),
		OtpAttemptWindow:    durationVariable("OTP_ATTEMPT_WINDOW", 15*time.Minute),
		NotificationTimeout: durationVariable("NOTIFICATION_TIMEOUT", 10*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intVariable(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer: %v", key, err)
	}
	return n
}

func durationVariable(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s must be a duration like 24h: %v", key, err)
	}
	return d
}
