package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
)

// ExpireUnpaidOrderCommandHandler re-checks the order inside the transaction,
// so a payment that completed after the order was selected is never cancelled.
type ExpireUnpaidOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	effects    *Effects
}

func NewExpireUnpaidOrderCommandHandler(uowFactory OrderUoWFactory, effects *Effects) ExpireUnpaidOrderCommandHandler {
	return ExpireUnpaidOrderCommandHandler{uowFactory: uowFactory, effects: effects}
}

func (h ExpireUnpaidOrderCommandHandler) Handle(ctx context.Context, cmd ExpireUnpaidOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o, changed, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		if o.Status() != order.Pending ||
			o.PaymentMethod() != order.Online ||
			o.PaymentStatus() == order.PaymentCompleted ||
			!o.CreatedAt().Before(cmd.Cutoff()) {
			return false, nil
		}
		return changedOnly(o.Cancel(UnpaidCancelReason, time.Now()))
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if !changed {
		return TransitionResult{Order: o}, nil
	}

	return TransitionResult{
		Order:         o,
		Changed:       true,
		Notifications: h.effects.AfterCommit(ctx, o, notifications.EventCancelled),
	}, nil
}
