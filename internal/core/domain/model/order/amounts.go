package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// TaxRate is applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.18")

	// FreeDeliveryThreshold is the subtotal above which no delivery fee is charged.
	FreeDeliveryThreshold = kernel.MustMoney("500")

	// FlatDeliveryFee is charged when the subtotal does not exceed FreeDeliveryThreshold.
	FlatDeliveryFee = kernel.MustMoney("50")
)

// Amounts is the server-side price breakdown of an order.
// Total always equals Subtotal + Tax + DeliveryFee.
type Amounts struct {
	subtotal    kernel.Money
	tax         kernel.Money
	deliveryFee kernel.Money
	total       kernel.Money
}

// CalculateAmounts prices items. Client supplied totals are never consulted.
func CalculateAmounts(items []Item) Amounts {
	subtotal := kernel.ZeroMoney()
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return amountsFromSubtotal(subtotal)
}

func amountsFromSubtotal(subtotal kernel.Money) Amounts {
	tax := subtotal.Percent(TaxRate)
	fee := FlatDeliveryFee
	if subtotal.GreaterThan(FreeDeliveryThreshold) {
		fee = kernel.ZeroMoney()
	}
	return Amounts{
		subtotal:    subtotal,
		tax:         tax,
		deliveryFee: fee,
		total:       subtotal.Add(tax).Add(fee),
	}
}

// RestoreAmounts rebuilds stored amounts and checks that they add up.
func RestoreAmounts(subtotal, tax, deliveryFee, total kernel.Money) (Amounts, error) {
	for name, m := range map[string]kernel.Money{
		"subtotal": subtotal, "tax": tax, "delivery fee": deliveryFee, "total": total,
	} {
		if err := m.Validate(); err != nil {
			return Amounts{}, errs.NewValueIsInvalidErrorWithCause(name, err)
		}
	}
	if sum := subtotal.Add(tax).Add(deliveryFee); !sum.IsEqual(total) {
		return Amounts{}, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%s does not equal %s + %s + %s", total, subtotal, tax, deliveryFee))
	}
	return Amounts{subtotal: subtotal, tax: tax, deliveryFee: deliveryFee, total: total}, nil
}

func (a Amounts) Subtotal() kernel.Money {
	return a.subtotal
}

func (a Amounts) Tax() kernel.Money {
	return a.tax
}

func (a Amounts) DeliveryFee() kernel.Money {
	return a.deliveryFee
}

func (a Amounts) Total() kernel.Money {
	return a.total
}
