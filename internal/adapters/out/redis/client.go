// Package redis keeps short-lived per-user and per-order state outside of
// Postgres: the push device token registry and the delivery code attempt
// counter.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// push:tokens:{user_id} -> set of device tokens
	keyDeviceTokens = "push:tokens:%s"

	// otp:attempts:{order_id} -> failed delivery code submissions
	keyOtpAttempts = "otp:attempts:%s"
)

// New connects and pings the server.
func New(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}
