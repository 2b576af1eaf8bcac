package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand cancels a pending or approved order. A captured online
// payment is not refunded.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	reason    string
	requester *kernel.UserID

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand takes the requesting customer; nil means an admin,
// who may cancel any order.
func NewCancelOrderCommand(orderID kernel.UUID, reason string, requester *kernel.UserID) (CancelOrderCommand, error) {
	errList := []error{orderID.Validate()}
	if requester != nil {
		errList = append(errList, requester.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{
		orderID:   orderID,
		reason:    strings.TrimSpace(reason),
		requester: requester,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CancelOrderCommand) Reason() string {
	return c.reason
}

func (c CancelOrderCommand) Requester() *kernel.UserID {
	return c.requester
}
