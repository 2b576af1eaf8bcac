package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
)

type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	effects    *Effects
}

func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory, effects *Effects) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{uowFactory: uowFactory, effects: effects}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o, _, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		if requester := cmd.Requester(); requester != nil && o.CustomerID() != *requester {
			return false, ErrNotPermitted
		}
		return changedOnly(o.Cancel(cmd.Reason(), time.Now()))
	})
	if err != nil {
		return TransitionResult{}, err
	}

	return TransitionResult{
		Order:         o,
		Changed:       true,
		Notifications: h.effects.AfterCommit(ctx, o, notifications.EventCancelled),
	}, nil
}
