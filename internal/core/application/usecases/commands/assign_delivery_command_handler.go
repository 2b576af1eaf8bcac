package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// AssignDeliveryCommandHandler assigns (or reassigns) the delivery agent of
// an approved order and notifies the agent.
type AssignDeliveryCommandHandler struct {
	uowFactory OrderUoWFactory
	assigner   services.DeliveryAssigner
	effects    *Effects
}

func NewAssignDeliveryCommandHandler(uowFactory OrderUoWFactory, effects *Effects) AssignDeliveryCommandHandler {
	return AssignDeliveryCommandHandler{
		uowFactory: uowFactory,
		assigner:   services.NewDeliveryAssigner(),
		effects:    effects,
	}
}

func (h AssignDeliveryCommandHandler) Handle(ctx context.Context, cmd AssignDeliveryCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o, _, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		now := time.Now()
		assignment, err := h.assigner.Assign(o, cmd.DeliveryPersonID(), cmd.ExpectedAt(), now)
		if err != nil {
			return false, err
		}
		return changedOnly(o.AssignDelivery(assignment, now))
	})
	if err != nil {
		return TransitionResult{}, err
	}

	return TransitionResult{
		Order:         o,
		Changed:       true,
		Notifications: h.effects.AfterCommit(ctx, o, notifications.EventAssigned),
	}, nil
}
