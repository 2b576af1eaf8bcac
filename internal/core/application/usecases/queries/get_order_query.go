package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads a single order by id.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// OrderView is the read model of an order. DeliveryOtp is included so the
// owning customer can read it; callers decide who may see it.
type OrderView struct {
	ID                 kernel.UUID
	CustomerID         kernel.UserID
	Status             string
	PaymentMethod      string
	PaymentStatus      string
	GatewayOrderID     *string
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	DeliveryFee        decimal.Decimal
	Total              decimal.Decimal
	ShippingAddress    string
	DeliveryPersonID   *kernel.UserID
	AssignedAt         *time.Time
	ExpectedDeliveryAt *time.Time
	DeliveryOtp        string
	CancelReason       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
	Items              []OrderItemView
}

type OrderItemView struct {
	ProductID            string
	Name                 string
	UnitPrice            decimal.Decimal
	Quantity             int
	RequiresPrescription bool
}
