package order

import (
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "cash_on_delivery"
	Online         PaymentMethod = "online"
)

// ParsePaymentMethod accepts "cod" as a short form of cash_on_delivery.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(CashOnDelivery), "cod", "cash on delivery":
		return CashOnDelivery, nil
	case string(Online):
		return Online, nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("payment method", fmt.Errorf("%q is not supported", s))
}

func (m PaymentMethod) Validate() error {
	if m != CashOnDelivery && m != Online {
		return errs.NewValueIsInvalidErrorWithCause("payment method", fmt.Errorf("%q is not supported", string(m)))
	}
	return nil
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus tracks the online payment. Cash-on-delivery orders stay
// PaymentPending for their whole life here.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("payment status", fmt.Errorf("%q is not supported", string(s)))
}

func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentDetails records the gateway side of an online payment. The gateway
// order id and amount are set when the payment intent is created; the rest
// only after the gateway signature was verified.
type PaymentDetails struct {
	GatewayOrderID   string
	AmountMinorUnits int64
	GatewayPaymentID string
	Signature        string
	CapturedAmount   int64
	VerifiedAt       *time.Time
}

// IsVerified reports whether a verified payment was recorded.
func (d PaymentDetails) IsVerified() bool {
	return d.GatewayPaymentID != "" && d.Signature != "" && d.VerifiedAt != nil
}
