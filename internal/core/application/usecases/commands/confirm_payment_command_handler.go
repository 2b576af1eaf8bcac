package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/order"
)

// ConfirmPaymentCommandHandler applies a gateway callback to an order.
//
// Business rules:
//   - The signature must verify, otherwise payments.ErrVerificationFailed
//   - The gateway order must be the one created for this order
//   - Resubmitting the same payment is a no-op success
//   - A failed confirmation never mutates the order
type ConfirmPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	payments   PaymentProcessor
	effects    *Effects
}

func NewConfirmPaymentCommandHandler(
	uowFactory OrderUoWFactory,
	payments PaymentProcessor,
	effects *Effects,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{uowFactory: uowFactory, payments: payments, effects: effects}
}

func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	if !h.payments.VerifyPayment(cmd.GatewayOrderID(), cmd.GatewayPaymentID(), cmd.Signature()).Verified {
		return TransitionResult{}, payments.ErrVerificationFailed
	}

	o, changed, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		if o.CustomerID() != cmd.Requester() {
			return false, ErrNotPermitted
		}
		return o.CompletePayment(cmd.GatewayOrderID(), cmd.GatewayPaymentID(), cmd.Signature(), time.Now())
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
		Notifications: h.effects.AfterCommit(ctx, o, notifications.EventPaymentCompleted),
	}, nil
}
