package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrListDeliveryAssignmentsQueryIsNotConstructed = errors.New(
	"ListDeliveryAssignmentsQuery must be created via NewListDeliveryAssignmentsQuery constructor",
)

// ListDeliveryAssignmentsQuery lists the open assignments of one delivery
// agent: approved orders waiting for pickup and orders out for delivery.
type ListDeliveryAssignmentsQuery struct { //nolint:recvcheck //using for validation
	agent kernel.UserID
	guard guard.ConstructorGuard
}

func NewListDeliveryAssignmentsQuery(agent kernel.UserID) (ListDeliveryAssignmentsQuery, error) {
	if err := agent.Validate(); err != nil {
		return ListDeliveryAssignmentsQuery{}, err
	}
	return ListDeliveryAssignmentsQuery{agent: agent, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDeliveryAssignmentsQuery) Validate() error {
	return q.guard.Validate(ErrListDeliveryAssignmentsQueryIsNotConstructed)
}

func (q ListDeliveryAssignmentsQuery) Agent() kernel.UserID {
	return q.agent
}

// AssignmentView carries what an agent needs on the road. It never includes
// the delivery code.
type AssignmentView struct {
	OrderID            kernel.UUID
	Status             string
	ShippingAddress    string
	PaymentMethod      string
	Total              decimal.Decimal
	AssignedAt         *time.Time
	ExpectedDeliveryAt *time.Time
}
