package order

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not built by NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrEmptyOrder is returned when an order is created without items.
	ErrEmptyOrder = errors.New("order must contain at least one item")

	// ErrInvalidTransition is the sentinel behind every InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrOtpMismatch is returned when the presented delivery code differs from the stored one.
	ErrOtpMismatch = errors.New("delivery otp does not match")

	// ErrPaymentAlreadyCompleted is returned when a different payment is applied to a paid order.
	ErrPaymentAlreadyCompleted = errors.New("payment already completed for this order")

	// ErrGatewayOrderMismatch is returned when a payment references a gateway order
	// other than the one created for this order.
	ErrGatewayOrderMismatch = errors.New("gateway order does not belong to this order")

	// ErrNotOnlinePayment is returned for payment operations on cash-on-delivery orders.
	ErrNotOnlinePayment = errors.New("order is not paid online")
)

// InvalidTransitionError describes an action that is not reachable from the
// order's current status.
type InvalidTransitionError struct {
	From   Status
	Action string
	Reason string
}

func newInvalidTransition(from Status, action string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, Action: action}
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s an order in status %s", ErrInvalidTransition, e.Action, e.From)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
