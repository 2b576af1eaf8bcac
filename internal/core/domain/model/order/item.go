package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when a zero-value Item is validated.
var ErrItemIsNotConstructed = errs.NewValueIsRequiredError("item must be created via NewItem")

// Item is an immutable order line.
type Item struct { //nolint:recvcheck //using for validation
	productID            string
	name                 string
	unitPrice            kernel.Money
	quantity             int
	requiresPrescription bool
	guard                guard.ConstructorGuard
}

// NewItem validates a checkout line. Quantity must be at least one and the
// unit price must be a constructed, non-negative amount.
func NewItem(productID, name string, unitPrice kernel.Money, quantity int, requiresPrescription bool) (Item, error) {
	var errList []error
	productID = strings.TrimSpace(productID)
	if productID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("product id"))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("item name"))
	}
	if err := unitPrice.Validate(); err != nil {
		errList = append(errList, err)
	}
	if quantity < 1 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is less than 1", quantity)))
	}
	if err := errors.Join(errList...); err != nil {
		return Item{}, err
	}

	return Item{
		productID:            productID,
		name:                 name,
		unitPrice:            unitPrice,
		quantity:             quantity,
		requiresPrescription: requiresPrescription,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) ProductID() string {
	return i.productID
}

func (i Item) Name() string {
	return i.name
}

func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) RequiresPrescription() bool {
	return i.requiresPrescription
}

// LineTotal is unitPrice * quantity.
func (i Item) LineTotal() kernel.Money {
	return i.unitPrice.Times(i.quantity)
}
