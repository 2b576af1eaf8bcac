// Package payments implements the two-phase online payment protocol: a payment
// intent is created at the gateway, and the gateway callback is later accepted
// only if its HMAC-SHA256 signature verifies against the server-held secret.
//
// The package never mutates orders. Callers apply a verified payment through
// the Order aggregate.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
)

// DefaultCurrency is used when a caller does not name one.
const DefaultCurrency = "INR"

var (
	// ErrGatewayUnavailable means the gateway could not be reached in time.
	// The caller may retry; nothing was mutated.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrVerificationFailed means the callback signature did not verify.
	// A new payment attempt is required.
	ErrVerificationFailed = errors.New("payment verification failed")

	errSecretRequired = errs.NewValueIsRequiredError("payment gateway secret")
)

// Verification is the outcome of a signature check.
type Verification struct {
	Verified bool
}

// Service creates gateway orders and verifies gateway callbacks.
type Service struct {
	gateway ports.PaymentGateway
	secret  []byte
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService requires a non-empty signing secret.
func NewService(gateway ports.PaymentGateway, secret string, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	if gateway == nil {
		return nil, errs.NewValueIsRequiredError("payment gateway")
	}
	if secret == "" {
		return nil, errSecretRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gateway: gateway,
		secret:  []byte(secret),
		metrics: m,
		logger:  logger.With("component", "payments"),
	}, nil
}

// CreateGatewayOrder asks the gateway for a payment intent of amountMinorUnits.
// Transport failures, timeouts and an open circuit are reported as
// ErrGatewayUnavailable; provider rejections keep ports.ErrGatewayRejected.
func (s *Service) CreateGatewayOrder(
	ctx context.Context,
	amountMinorUnits int64,
	currency, receiptID string,
) (ports.GatewayOrder, error) {
	if amountMinorUnits <= 0 {
		return ports.GatewayOrder{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d is not greater than 0", amountMinorUnits))
	}
	if strings.TrimSpace(receiptID) == "" {
		return ports.GatewayOrder{}, errs.NewValueIsRequiredError("receipt id")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	created, err := s.gateway.CreateOrder(ctx, ports.GatewayOrderRequest{
		AmountMinorUnits: amountMinorUnits,
		Currency:         currency,
		ReceiptID:        receiptID,
	})
	s.metrics.Gateway(err == nil)
	if err != nil {
		s.logger.WarnContext(ctx, "gateway order creation failed", "receipt", receiptID, "error", err)
		if errors.Is(err, ports.ErrGatewayRejected) {
			return ports.GatewayOrder{}, err
		}
		return ports.GatewayOrder{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	if created.ID == "" {
		return ports.GatewayOrder{}, fmt.Errorf("%w: empty gateway order id", ErrGatewayUnavailable)
	}
	if created.AmountMinorUnits != amountMinorUnits {
		return ports.GatewayOrder{}, fmt.Errorf("%w: gateway amount %d differs from requested %d",
			ports.ErrGatewayRejected, created.AmountMinorUnits, amountMinorUnits)
	}

	s.logger.InfoContext(ctx, "gateway order created", "receipt", receiptID, "gateway_order_id", created.ID)
	return created, nil
}

// VerifyPayment recomputes hex(HMAC_SHA256(secret, gatewayOrderID + "|" +
// gatewayPaymentID)) and compares it with signature in constant time.
// A mismatch is reported as Verified=false, never as an error.
func (s *Service) VerifyPayment(gatewayOrderID, gatewayPaymentID, signature string) Verification {
	expected := s.Sign(gatewayOrderID, gatewayPaymentID)
	verified := hmac.Equal([]byte(expected), []byte(signature))
	s.metrics.Verification(verified)
	if !verified {
		s.logger.Warn("payment signature mismatch", "gateway_order_id", gatewayOrderID)
	}
	return Verification{Verified: verified}
}

// Sign returns the signature the gateway is expected to produce for the pair.
func (s *Service) Sign(gatewayOrderID, gatewayPaymentID string) string {
	return Sign(s.secret, gatewayOrderID, gatewayPaymentID)
}

// Sign computes hex(HMAC_SHA256(secret, gatewayOrderID + "|" + gatewayPaymentID)).
func Sign(secret []byte, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
