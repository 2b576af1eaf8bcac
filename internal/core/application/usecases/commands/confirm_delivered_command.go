package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrConfirmDeliveredCommandIsNotConstructed = errors.New(
	"ConfirmDeliveredCommand must be created via NewConfirmDeliveredCommand constructor",
)

// ConfirmDeliveredCommand presents the customer's delivery code.
type ConfirmDeliveredCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	otp     string
	agent   *kernel.UserID

	guard guard.ConstructorGuard
}

// NewConfirmDeliveredCommand takes the acting agent; a nil agent means an admin.
func NewConfirmDeliveredCommand(orderID kernel.UUID, otp string, agent *kernel.UserID) (ConfirmDeliveredCommand, error) {
	var errList []error
	errList = append(errList, orderID.Validate())
	if otp == "" {
		errList = append(errList, errs.NewValueIsRequiredError("otp"))
	}
	if agent != nil {
		errList = append(errList, agent.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return ConfirmDeliveredCommand{}, err
	}
	return ConfirmDeliveredCommand{orderID: orderID, otp: otp, agent: agent, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmDeliveredCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveredCommandIsNotConstructed)
}

func (c ConfirmDeliveredCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ConfirmDeliveredCommand) Otp() string {
	return c.otp
}

func (c ConfirmDeliveredCommand) Agent() *kernel.UserID {
	return c.agent
}
