package commands

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// CreatePaymentResult carries the intent the client hands to the gateway checkout.
type CreatePaymentResult struct {
	Order        *order.Order
	GatewayOrder ports.GatewayOrder
}

// CreatePaymentCommandHandler calls the gateway outside of any transaction
// and then stores the intent on the order, provided the order did not change
// in between.
type CreatePaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	payments   PaymentProcessor
}

func NewCreatePaymentCommandHandler(uowFactory OrderUoWFactory, payments PaymentProcessor) CreatePaymentCommandHandler {
	return CreatePaymentCommandHandler{uowFactory: uowFactory, payments: payments}
}

func (h CreatePaymentCommandHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (CreatePaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreatePaymentResult{}, err
	}

	snapshot, err := loadOrder(ctx, h.uowFactory, cmd.OrderID())
	if err != nil {
		return CreatePaymentResult{}, err
	}
	if snapshot.CustomerID() != cmd.Requester() {
		return CreatePaymentResult{}, ErrNotPermitted
	}
	if err = snapshot.ValidatePaymentIntent(); err != nil {
		return CreatePaymentResult{}, err
	}

	gatewayOrder, err := h.payments.CreateGatewayOrder(
		ctx,
		snapshot.Amounts().Total().MinorUnits(),
		cmd.Currency(),
		snapshot.ID().String(),
	)
	if err != nil {
		return CreatePaymentResult{}, err
	}

	o, _, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		if o.Version() != snapshot.Version() {
			return false, errs.NewVersionIsInvalidErrorWithCause("order",
				fmt.Errorf("changed from version %d to %d while creating payment", snapshot.Version(), o.Version()))
		}
		return changedOnly(o.AttachGatewayOrder(gatewayOrder.ID, gatewayOrder.AmountMinorUnits, time.Now()))
	})
	if err != nil {
		return CreatePaymentResult{}, err
	}

	return CreatePaymentResult{Order: o, GatewayOrder: gatewayOrder}, nil
}
