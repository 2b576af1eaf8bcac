package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultMaxOtpAttempts = 5
	DefaultOtpWindow      = 15 * time.Minute
)

// OtpAttemptLimiter allows maxAttempts failed submissions per order within
// a fixed window that starts at the first failure. The counter is an INCR on
// one key whose TTL is set only when the key is created, so later failures
// do not extend the window.
//
// Example:
//
//	limiter := NewOtpAttemptLimiter(rdb, DefaultMaxOtpAttempts, DefaultOtpWindow)
//	if blocked, err := limiter.Exceeded(ctx, orderID); err != nil || blocked {
//	    return commands.ErrOtpAttemptsExceeded
//	}
//	if errors.Is(err, order.ErrOtpMismatch) {
//	    _, _ = limiter.RecordFailure(ctx, orderID)
//	}
type OtpAttemptLimiter struct {
	rdb         *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewOtpAttemptLimiter(rdb *redis.Client, maxAttempts int64, window time.Duration) *OtpAttemptLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxOtpAttempts
	}
	if window <= 0 {
		window = DefaultOtpWindow
	}
	return &OtpAttemptLimiter{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

func (l *OtpAttemptLimiter) Exceeded(ctx context.Context, orderID kernel.UUID) (bool, error) {
	used, err := l.rdb.Get(ctx, attemptsKey(orderID)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read otp attempts of %s: %w", orderID, err)
	}
	return used >= l.maxAttempts, nil
}

func (l *OtpAttemptLimiter) RecordFailure(ctx context.Context, orderID kernel.UUID) (int64, error) {
	key := attemptsKey(orderID)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record otp failure of %s: %w", orderID, err)
	}
	return incr.Val(), nil
}

func (l *OtpAttemptLimiter) Reset(ctx context.Context, orderID kernel.UUID) error {
	return l.rdb.Del(ctx, attemptsKey(orderID)).Err()
}

func attemptsKey(orderID kernel.UUID) string {
	return fmt.Sprintf(keyOtpAttempts, orderID)
}
