package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"
)

// Effects runs the side effects that follow a committed transition. They are
// best effort: a failed notification or event never undoes the transition.
type Effects struct {
	notifier TransitionNotifier
	events   ports.OrderEventPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewEffects(
	notifier TransitionNotifier,
	events ports.OrderEventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Effects {
	if logger == nil {
		logger = slog.Default()
	}
	return &Effects{
		notifier: notifier,
		events:   events,
		metrics:  m,
		logger:   logger.With("component", "order-transitions"),
	}
}

// AfterCommit notifies once and publishes one order-changed event.
func (e *Effects) AfterCommit(ctx context.Context, o *order.Order, event notifications.Event) notifications.Report {
	e.metrics.Transition(string(event))
	e.logger.InfoContext(ctx, "order transition committed",
		"order_id", o.ID().String(),
		"event", event,
		"status", o.Status().String(),
		"version", o.Version(),
	)

	var report notifications.Report
	if e.notifier != nil {
		report = e.notifier.NotifyTransition(ctx, o, event)
	}

	if e.events != nil {
		err := e.events.Publish(ctx, ports.OrderChanged{
			EventType:     string(event),
			OrderID:       o.ID(),
			CustomerID:    o.CustomerID(),
			Status:        o.Status().String(),
			PaymentStatus: o.PaymentStatus().String(),
			Version:       o.Version(),
			OccurredAt:    time.Now().UTC(),
		})
		if err != nil {
			e.logger.WarnContext(ctx, "failed to publish order event",
				"order_id", o.ID().String(), "event", event, "error", err)
		}
	}

	return report
}
