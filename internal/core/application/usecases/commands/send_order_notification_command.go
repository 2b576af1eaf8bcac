package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrSendOrderNotificationCommandIsNotConstructed = errors.New(
	"SendOrderNotificationCommand must be created via NewSendOrderNotificationCommand constructor",
)

// SendOrderNotificationCommand re-sends one of the order composites on demand.
type SendOrderNotificationCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	template notifications.TemplateType
	agent    *kernel.UserID

	guard guard.ConstructorGuard
}

// NewSendOrderNotificationCommand takes the acting agent; nil means an admin.
func NewSendOrderNotificationCommand(
	orderID kernel.UUID,
	template notifications.TemplateType,
	agent *kernel.UserID,
) (SendOrderNotificationCommand, error) {
	errList := []error{orderID.Validate()}
	switch template {
	case notifications.TemplateOrderConfirmation,
		notifications.TemplateOrderStatusUpdate,
		notifications.TemplateDeliveryAssignment:
	default:
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("template",
			fmt.Errorf("%q cannot be sent on demand", template)))
	}
	if agent != nil {
		errList = append(errList, agent.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return SendOrderNotificationCommand{}, err
	}
	return SendOrderNotificationCommand{
		orderID:  orderID,
		template: template,
		agent:    agent,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c SendOrderNotificationCommand) Validate() error {
	return c.guard.Validate(ErrSendOrderNotificationCommandIsNotConstructed)
}

func (c SendOrderNotificationCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c SendOrderNotificationCommand) Template() notifications.TemplateType {
	return c.template
}

func (c SendOrderNotificationCommand) Agent() *kernel.UserID {
	return c.agent
}
