package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
)

// ApproveOrderCommandHandler approves pending orders. Online orders must
// have a completed payment.
type ApproveOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	effects    *Effects
}

func NewApproveOrderCommandHandler(uowFactory OrderUoWFactory, effects *Effects) ApproveOrderCommandHandler {
	return ApproveOrderCommandHandler{uowFactory: uowFactory, effects: effects}
}

func (h ApproveOrderCommandHandler) Handle(ctx context.Context, cmd ApproveOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o, _, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		return changedOnly(o.Approve(time.Now()))
	})
	if err != nil {
		return TransitionResult{}, err
	}

	return TransitionResult{
		Order:         o,
		Changed:       true,
		Notifications: h.effects.AfterCommit(ctx, o, notifications.EventApproved),
	}, nil
}
