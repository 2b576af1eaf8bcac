package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand places a new order at checkout. Prices are taken from
// the items; any client side totals are ignored.
//
// Example:
//
//	item, _ := order.NewItem("sku-1", "Paracetamol", kernel.MustMoney("45"), 2, false)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, []order.Item{item},
//	    "12 Park Street", order.Online, nil)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	customerID       kernel.UserID
	items            []order.Item
	shippingAddress  string
	paymentMethod    order.PaymentMethod
	customerLocation *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand rejects an empty item list with order.ErrEmptyOrder.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UserID,
	items []order.Item,
	shippingAddress string,
	paymentMethod order.PaymentMethod,
	customerLocation *kernel.GeoPoint,
) (CreateOrderCommand, error) {
	if len(items) == 0 {
		return CreateOrderCommand{}, order.ErrEmptyOrder
	}

	cmd := CreateOrderCommand{
		items:            items,
		customerLocation: customerLocation,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setShippingAddress(shippingAddress),
		paymentMethod.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}
	cmd.paymentMethod = paymentMethod

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) CustomerID() kernel.UserID {
	return c.customerID
}

func (c CreateOrderCommand) Items() []order.Item {
	return c.items
}

func (c CreateOrderCommand) ShippingAddress() string {
	return c.shippingAddress
}

func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

func (c CreateOrderCommand) CustomerLocation() *kernel.GeoPoint {
	return c.customerLocation
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UserID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setShippingAddress(address string) error {
	if address == "" {
		return errs.NewValueIsRequiredError("shipping address")
	}
	c.shippingAddress = address
	return nil
}
