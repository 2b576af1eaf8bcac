// Package ports defines the contracts between the fulfillment core and its
// infrastructure: persistence, the payment gateway, notification providers,
// the device token registry and the event stream.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate together with its items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the aggregate if its stored version still equals
	// aggregate.Version(), then advances the aggregate's version.
	// A lost race returns errs.VersionIsInvalidError and leaves storage untouched.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns errs.ObjectNotFoundError if no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
