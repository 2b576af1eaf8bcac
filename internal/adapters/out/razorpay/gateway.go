// Package razorpay implements ports.PaymentGateway on the Razorpay orders API.
package razorpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	rzp "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
	"github.com/sony/gobreaker"
)

const DefaultTimeout = 10 * time.Second

// orderCreator is the part of the Razorpay SDK this adapter uses.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Gateway struct {
	orders  orderCreator
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

// New builds a gateway on a Razorpay client for keyID/keySecret.
func New(keyID, keySecret string, timeout time.Duration, logger *slog.Logger) (*Gateway, error) {
	if keyID == "" {
		return nil, errs.NewValueIsRequiredError("razorpay key id")
	}
	if keySecret == "" {
		return nil, errs.NewValueIsRequiredError("razorpay key secret")
	}
	client := rzp.NewClient(keyID, keySecret)
	return newGateway(client.Order, timeout, logger), nil
}

func newGateway(orders orderCreator, timeout time.Duration, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "razorpay")

	st := gobreaker.Settings{
		Name:        "Razorpay",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		// A rejected request proves the provider is up.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ports.ErrGatewayRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Gateway{
		orders:  orders,
		cb:      gobreaker.NewCircuitBreaker(st),
		timeout: timeout,
	}
}

// CreateOrder creates a Razorpay order. The call is abandoned after the
// gateway timeout; the SDK itself takes no context.
func (g *Gateway) CreateOrder(ctx context.Context, req ports.GatewayOrderRequest) (ports.GatewayOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.create(ctx, req)
	})
	if err != nil {
		return ports.GatewayOrder{}, err
	}
	return res.(ports.GatewayOrder), nil
}

func (g *Gateway) create(ctx context.Context, req ports.GatewayOrderRequest) (ports.GatewayOrder, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := g.orders.Create(map[string]interface{}{
			"amount":   req.AmountMinorUnits,
			"currency": req.Currency,
			"receipt":  req.ReceiptID,
		}, nil)
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return ports.GatewayOrder{}, fmt.Errorf("create razorpay order: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return ports.GatewayOrder{}, classify(r.err)
		}
		return parseOrder(r.body)
	}
}

func classify(err error) error {
	var badRequest *rzperrors.BadRequestError
	if errors.As(err, &badRequest) {
		return fmt.Errorf("%w: %w", ports.ErrGatewayRejected, err)
	}
	return fmt.Errorf("create razorpay order: %w", err)
}

func parseOrder(body map[string]interface{}) (ports.GatewayOrder, error) {
	id, _ := body["id"].(string)
	currency, _ := body["currency"].(string)

	var amount int64
	switch v := body["amount"].(type) {
	case float64:
		amount = int64(v)
	case int64:
		amount = v
	case int:
		amount = int64(v)
	default:
		return ports.GatewayOrder{}, fmt.Errorf("razorpay order %q: unexpected amount %v", id, body["amount"])
	}

	return ports.GatewayOrder{ID: id, AmountMinorUnits: amount, Currency: currency}, nil
}
