package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// UnpaidCancelReason is recorded on orders cancelled for lack of payment.
const UnpaidCancelReason = "payment not completed"

var ErrExpireUnpaidOrderCommandIsNotConstructed = errors.New(
	"ExpireUnpaidOrderCommand must be created via NewExpireUnpaidOrderCommand constructor",
)

// ExpireUnpaidOrderCommand cancels a pending online order that was created
// before cutoff and is still unpaid.
type ExpireUnpaidOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	cutoff  time.Time

	guard guard.ConstructorGuard
}

func NewExpireUnpaidOrderCommand(orderID kernel.UUID, cutoff time.Time) (ExpireUnpaidOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ExpireUnpaidOrderCommand{}, err
	}
	if cutoff.IsZero() {
		return ExpireUnpaidOrderCommand{}, errs.NewValueIsRequiredError("cutoff")
	}
	return ExpireUnpaidOrderCommand{orderID: orderID, cutoff: cutoff, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireUnpaidOrderCommand) Validate() error {
	return c.guard.Validate(ErrExpireUnpaidOrderCommandIsNotConstructed)
}

func (c ExpireUnpaidOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ExpireUnpaidOrderCommand) Cutoff() time.Time {
	return c.cutoff
}
