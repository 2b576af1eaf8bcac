package ports

import (
	"context"
	"errors"
)

// GatewayOrderRequest asks the payment gateway for a new payment intent.
type GatewayOrderRequest struct {
	AmountMinorUnits int64
	Currency         string
	ReceiptID        string
}

// GatewayOrder is the provider-side payment intent.
type GatewayOrder struct {
	ID               string
	AmountMinorUnits int64
	Currency         string
}

// PaymentGateway creates payment intents at the provider. Implementations
// bound every call with a timeout and never retry.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (GatewayOrder, error)
}

// ErrGatewayRejected is returned by gateways when the provider refused the
// request itself, as opposed to being unreachable.
var ErrGatewayRejected = errors.New("payment gateway rejected the request")
