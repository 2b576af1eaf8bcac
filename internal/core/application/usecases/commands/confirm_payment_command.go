package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// ConfirmPaymentCommand submits the fields of a gateway payment callback.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	gatewayOrderID   string
	gatewayPaymentID string
	signature        string
	requester        kernel.UserID

	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(
	orderID kernel.UUID,
	gatewayOrderID, gatewayPaymentID, signature string,
	requester kernel.UserID,
) (ConfirmPaymentCommand, error) {
	cmd := ConfirmPaymentCommand{
		orderID:          orderID,
		gatewayOrderID:   strings.TrimSpace(gatewayOrderID),
		gatewayPaymentID: strings.TrimSpace(gatewayPaymentID),
		signature:        strings.TrimSpace(signature),
		requester:        requester,
		guard:            guard.NewConstructorGuard(),
	}

	errList := []error{orderID.Validate(), requester.Validate()}
	for name, v := range map[string]string{
		"gateway order id":   cmd.gatewayOrderID,
		"gateway payment id": cmd.gatewayPaymentID,
		"signature":          cmd.signature,
	} {
		if v == "" {
			errList = append(errList, errs.NewValueIsRequiredError(name))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return ConfirmPaymentCommand{}, err
	}
	return cmd, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ConfirmPaymentCommand) GatewayOrderID() string {
	return c.gatewayOrderID
}

func (c ConfirmPaymentCommand) GatewayPaymentID() string {
	return c.gatewayPaymentID
}

func (c ConfirmPaymentCommand) Signature() string {
	return c.signature
}

func (c ConfirmPaymentCommand) Requester() kernel.UserID {
	return c.requester
}
