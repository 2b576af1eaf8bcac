package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateDeliveryStatusCommandIsNotConstructed = errors.New(
	"UpdateDeliveryStatusCommand must be created via NewUpdateDeliveryStatusCommand constructor",
)

// DeliveryUpdate is a status reported by the delivery agent's app.
type DeliveryUpdate string

const (
	DeliveryPicked    DeliveryUpdate = "picked"
	DeliveryInTransit DeliveryUpdate = "in_transit"
	DeliveryDelivered DeliveryUpdate = "delivered"
)

// ParseDeliveryUpdate normalizes case, spaces and hyphens.
func ParseDeliveryUpdate(s string) (DeliveryUpdate, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch DeliveryUpdate(normalized) {
	case DeliveryPicked, DeliveryInTransit, DeliveryDelivered:
		return DeliveryUpdate(normalized), nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("delivery status", fmt.Errorf("%q is not supported", s))
}

// UpdateDeliveryStatusCommand is issued by the assigned agent. Picked and
// in-transit dispatch the order; delivered confirms it with the customer's code.
type UpdateDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	update  DeliveryUpdate
	otp     string
	agent   kernel.UserID

	guard guard.ConstructorGuard
}

func NewUpdateDeliveryStatusCommand(
	orderID kernel.UUID,
	update DeliveryUpdate,
	otp string,
	agent kernel.UserID,
) (UpdateDeliveryStatusCommand, error) {
	errList := []error{orderID.Validate(), agent.Validate()}
	if _, err := ParseDeliveryUpdate(string(update)); err != nil {
		errList = append(errList, err)
	}
	if update == DeliveryDelivered && strings.TrimSpace(otp) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("otp"))
	}
	if err := errors.Join(errList...); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}
	return UpdateDeliveryStatusCommand{
		orderID: orderID,
		update:  update,
		otp:     strings.TrimSpace(otp),
		agent:   agent,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryStatusCommandIsNotConstructed)
}

func (c UpdateDeliveryStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UpdateDeliveryStatusCommand) Update() DeliveryUpdate {
	return c.update
}

func (c UpdateDeliveryStatusCommand) Otp() string {
	return c.otp
}

func (c UpdateDeliveryStatusCommand) Agent() kernel.UserID {
	return c.agent
}
