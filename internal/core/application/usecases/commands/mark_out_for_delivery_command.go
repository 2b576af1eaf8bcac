package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrMarkOutForDeliveryCommandIsNotConstructed = errors.New(
	"MarkOutForDeliveryCommand must be created via NewMarkOutForDeliveryCommand constructor",
)

// MarkOutForDeliveryCommand dispatches an assigned order and issues its
// delivery code.
type MarkOutForDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agent   *kernel.UserID

	// idempotent turns a repeat on an order already out for delivery into a no-op.
	idempotent bool

	guard guard.ConstructorGuard
}

// NewMarkOutForDeliveryCommand is used by admins.
func NewMarkOutForDeliveryCommand(orderID kernel.UUID) (MarkOutForDeliveryCommand, error) {
	if err := orderID.Validate(); err != nil {
		return MarkOutForDeliveryCommand{}, err
	}
	return MarkOutForDeliveryCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// NewAgentPickupCommand is used when the assigned agent reports the order as
// picked up or in transit. Repeats are accepted as no-ops.
func NewAgentPickupCommand(orderID kernel.UUID, agent kernel.UserID) (MarkOutForDeliveryCommand, error) {
	if err := errors.Join(orderID.Validate(), agent.Validate()); err != nil {
		return MarkOutForDeliveryCommand{}, err
	}
	return MarkOutForDeliveryCommand{
		orderID:    orderID,
		agent:      &agent,
		idempotent: true,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c MarkOutForDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrMarkOutForDeliveryCommandIsNotConstructed)
}

func (c MarkOutForDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Agent is the acting delivery agent, or nil for admin dispatch.
func (c MarkOutForDeliveryCommand) Agent() *kernel.UserID {
	return c.agent
}

func (c MarkOutForDeliveryCommand) Idempotent() bool {
	return c.idempotent
}
