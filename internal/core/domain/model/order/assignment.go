package order

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// DeliveryAssignment binds an order to a delivery agent. It is produced by
// the delivery assigner and incorporated by Order.AssignDelivery.
type DeliveryAssignment struct {
	OrderID          kernel.UUID
	DeliveryPersonID kernel.UserID
	AssignedAt       time.Time
	ExpectedAt       *time.Time
}

func (a DeliveryAssignment) Validate() error {
	var errList []error
	if err := a.OrderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := a.DeliveryPersonID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if a.AssignedAt.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("assigned at"))
	}
	return errors.Join(errList...)
}
