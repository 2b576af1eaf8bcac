package kernel

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the number of decimal places amounts are kept at.
const moneyPlaces = 2

var (
	// ErrMoneyIsNotConstructed is returned when a zero-value Money is validated.
	ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney, MoneyFromString or ZeroMoney")

	errNegativeAmount = errors.New("amount must not be negative")
)

// Money is a non-negative amount in the store currency, rounded half away from
// zero to two decimal places. Arithmetic keeps the rounding: Percent rounds
// its result, Add and Times stay exact on already rounded operands.
//
// The zero value is not a valid amount. Use ZeroMoney for "nothing owed".
//
// Example:
//
//	subtotal := MustMoney("120").Times(2)                      // 240.00
//	tax := subtotal.Percent(decimal.RequireFromString("0.18")) // 43.20
//	total := subtotal.Add(tax)                                 // 283.20
//	amount := total.MinorUnits()                               // 28320
type Money struct { //nolint:recvcheck //using for validation
	amount decimal.Decimal
	guard  guard.ConstructorGuard
}

// NewMoney rounds amount to two places and rejects negative values.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%s: %w", amount.String(), errNegativeAmount))
	}
	return Money{amount: amount.Round(moneyPlaces), guard: guard.NewConstructorGuard()}, nil
}

// MoneyFromString parses a decimal string such as "108.00".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(d)
}

// MustMoney is NewMoney for constants and tests; it panics on invalid input.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a valid zero amount.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero, guard: guard.NewConstructorGuard()}
}

func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

// Decimal exposes the underlying value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount), guard: guard.NewConstructorGuard()}
}

// Times multiplies by an item quantity.
func (m Money) Times(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity))), guard: guard.NewConstructorGuard()}
}

// Percent applies a rate and rounds the result to two places.
func (m Money) Percent(rate decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(rate).Round(moneyPlaces), guard: guard.NewConstructorGuard()}
}

func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// MinorUnits converts to the gateway's integer convention: round(amount * 100).
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(moneyPlaces).Round(0).IntPart()
}

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return m.amount.StringFixed(moneyPlaces)
}
