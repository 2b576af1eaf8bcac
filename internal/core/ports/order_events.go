package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// OrderChanged is published after every committed order transition.
type OrderChanged struct {
	EventType     string
	OrderID       kernel.UUID
	CustomerID    kernel.UserID
	Status        string
	PaymentStatus string
	Version       int64
	OccurredAt    time.Time
}

// OrderEventPublisher emits order events to downstream consumers.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event OrderChanged) error
}
