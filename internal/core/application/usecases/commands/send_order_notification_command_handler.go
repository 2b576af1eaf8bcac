package commands

import (
	"context"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
)

// OrderNotifier is the subset of the dispatcher used for on-demand sends.
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order) notifications.Report
	SendOrderStatusUpdate(ctx context.Context, o *order.Order) notifications.Report
	SendDeliveryAssignment(ctx context.Context, o *order.Order) notifications.Report
}

// SendOrderNotificationCommandHandler reads the order and sends the requested
// composite. It never changes the order.
type SendOrderNotificationCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   OrderNotifier
}

func NewSendOrderNotificationCommandHandler(
	uowFactory OrderUoWFactory,
	notifier OrderNotifier,
) SendOrderNotificationCommandHandler {
	return SendOrderNotificationCommandHandler{uowFactory: uowFactory, notifier: notifier}
}

func (h SendOrderNotificationCommandHandler) Handle(
	ctx context.Context,
	cmd SendOrderNotificationCommand,
) (notifications.Report, error) {
	if err := cmd.Validate(); err != nil {
		return notifications.Report{}, err
	}

	o, err := loadOrder(ctx, h.uowFactory, cmd.OrderID())
	if err != nil {
		return notifications.Report{}, err
	}
	if agent := cmd.Agent(); agent != nil && !o.IsAssignedTo(*agent) {
		return notifications.Report{}, ErrNotPermitted
	}

	switch cmd.Template() {
	case notifications.TemplateOrderConfirmation:
		return h.notifier.SendOrderConfirmation(ctx, o), nil
	case notifications.TemplateDeliveryAssignment:
		return h.notifier.SendDeliveryAssignment(ctx, o), nil
	default:
		return h.notifier.SendOrderStatusUpdate(ctx, o), nil
	}
}
