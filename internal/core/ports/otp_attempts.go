package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// OtpAttemptLimiter counts failed delivery code submissions per order,
// outside of the order record.
type OtpAttemptLimiter interface {
	// Exceeded reports whether the order has used up its attempts.
	Exceeded(ctx context.Context, orderID kernel.UUID) (bool, error)

	// RecordFailure counts a mismatch and returns the attempts used so far.
	RecordFailure(ctx context.Context, orderID kernel.UUID) (int64, error)

	// Reset clears the counter after a successful confirmation.
	Reset(ctx context.Context, orderID kernel.UUID) error
}
