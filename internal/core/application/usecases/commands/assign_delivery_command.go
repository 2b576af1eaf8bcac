package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAssignDeliveryCommandIsNotConstructed = errors.New(
	"AssignDeliveryCommand must be created via NewAssignDeliveryCommand constructor",
)

// AssignDeliveryCommand attaches a delivery agent, and optionally a
// scheduled delivery time, to an approved order.
type AssignDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	deliveryPersonID kernel.UserID
	expectedAt       *time.Time

	guard guard.ConstructorGuard
}

func NewAssignDeliveryCommand(
	orderID kernel.UUID,
	deliveryPersonID kernel.UserID,
	expectedAt *time.Time,
) (AssignDeliveryCommand, error) {
	if err := errors.Join(orderID.Validate(), deliveryPersonID.Validate()); err != nil {
		return AssignDeliveryCommand{}, err
	}
	return AssignDeliveryCommand{
		orderID:          orderID,
		deliveryPersonID: deliveryPersonID,
		expectedAt:       expectedAt,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (c AssignDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAssignDeliveryCommandIsNotConstructed)
}

func (c AssignDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignDeliveryCommand) DeliveryPersonID() kernel.UserID {
	return c.deliveryPersonID
}

func (c AssignDeliveryCommand) ExpectedAt() *time.Time {
	return c.expectedAt
}
