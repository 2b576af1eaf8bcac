package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// MarkOutForDeliveryCommandHandler generates the delivery code exactly once
// and sends it to the customer after commit.
type MarkOutForDeliveryCommandHandler struct {
	uowFactory OrderUoWFactory
	otp        OtpIssuer
	effects    *Effects
}

func NewMarkOutForDeliveryCommandHandler(
	uowFactory OrderUoWFactory,
	otp OtpIssuer,
	effects *Effects,
) MarkOutForDeliveryCommandHandler {
	return MarkOutForDeliveryCommandHandler{uowFactory: uowFactory, otp: otp, effects: effects}
}

func (h MarkOutForDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd MarkOutForDeliveryCommand,
) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o, changed, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		if agent := cmd.Agent(); agent != nil && !o.IsAssignedTo(*agent) {
			return false, ErrNotPermitted
		}
		if cmd.Idempotent() && o.Status() == order.OutForDelivery {
			return false, nil
		}
		// Fail on the transition before spending a code.
		if _, err := o.Status().Dispatch(); err != nil {
			return false, err
		}
		code, err := h.otp.Generate(services.DefaultOtpLength)
		if err != nil {
			return false, err
		}
		return changedOnly(o.Dispatch(code, time.Now()))
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
		Notifications: h.effects.AfterCommit(ctx, o, notifications.EventOutForDelivery),
	}, nil
}
