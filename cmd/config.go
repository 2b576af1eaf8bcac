package cmd

import (
	"fmt"
	"time"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaHost                   string
	KafkaConsumerGroup          string
	KafkaCheckoutConfirmedTopic string
	KafkaOrderChangedTopic      string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	FCMProjectID       string
	FCMCredentialsFile string

	RazorpayKeyID     string
	RazorpayKeySecret string
	GatewayTimeout    time.Duration

	JWTSecret string

	UnpaidOrderTTL      time.Duration
	ExpireSchedule      string
	OtpMaxAttempts      int64
	OtpAttemptWindow    time.Duration
	NotificationTimeout time.Duration
}

// DSN is the Postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// KafkaEnabled reports whether brokers were configured. Without them the
// service neither consumes checkouts nor publishes order events.
func (c Config) KafkaEnabled() bool {
	return c.KafkaHost != ""
}
