// Package commands contains the business operations that change order state.
// Every command follows the same pattern: validation, a transaction through a
// unit of work with a compare-and-swap update, and after commit exactly one
// notification plus one order-changed event.
package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

var (
	// ErrOtpAttemptsExceeded is returned when an order has used up its delivery
	// code attempts. The order is left unchanged.
	ErrOtpAttemptsExceeded = errors.New("too many delivery otp attempts")

	// ErrNotPermitted is returned when the acting user does not own the order
	// or is not its assigned delivery agent.
	ErrNotPermitted = errors.New("not permitted to act on this order")
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW manages transactions for order operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)

// Collaborators outside the transaction.
type (
	// TransitionNotifier sends the notification belonging to a transition.
	TransitionNotifier interface {
		NotifyTransition(ctx context.Context, o *order.Order, event notifications.Event) notifications.Report
	}

	// PaymentProcessor creates payment intents and checks gateway signatures.
	PaymentProcessor interface {
		CreateGatewayOrder(ctx context.Context, amountMinorUnits int64, currency, receiptID string) (ports.GatewayOrder, error)
		VerifyPayment(gatewayOrderID, gatewayPaymentID, signature string) payments.Verification
	}

	// OtpIssuer generates delivery codes.
	OtpIssuer interface {
		Generate(length int) (string, error)
	}
)

// TransitionResult is returned by every state-changing handler.
type TransitionResult struct {
	Order *order.Order

	// Changed is false when the command was an idempotent repeat.
	Changed bool

	// Notifications reports the dispatch attempted after commit. It is empty
	// when nothing changed.
	Notifications notifications.Report
}
