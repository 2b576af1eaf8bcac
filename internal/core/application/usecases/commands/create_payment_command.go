package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCreatePaymentCommandIsNotConstructed = errors.New(
	"CreatePaymentCommand must be created via NewCreatePaymentCommand constructor",
)

// CreatePaymentCommand creates a gateway payment intent for an online order's total.
type CreatePaymentCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	currency  string
	requester kernel.UserID

	guard guard.ConstructorGuard
}

func NewCreatePaymentCommand(orderID kernel.UUID, currency string, requester kernel.UserID) (CreatePaymentCommand, error) {
	if err := errors.Join(orderID.Validate(), requester.Validate()); err != nil {
		return CreatePaymentCommand{}, err
	}
	return CreatePaymentCommand{
		orderID:   orderID,
		currency:  strings.TrimSpace(currency),
		requester: requester,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreatePaymentCommand) Validate() error {
	return c.guard.Validate(ErrCreatePaymentCommandIsNotConstructed)
}

func (c CreatePaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Currency may be empty, in which case the gateway default applies.
func (c CreatePaymentCommand) Currency() string {
	return c.currency
}

func (c CreatePaymentCommand) Requester() kernel.UserID {
	return c.requester
}
