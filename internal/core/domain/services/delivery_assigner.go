package services

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// ErrExpectedBeforeAssignment is returned when the scheduled delivery time
// lies before the assignment itself.
var ErrExpectedBeforeAssignment = errors.New("expected delivery time is before assignment time")

// DeliveryAssigner builds delivery assignments. It is a pure service: it
// neither reads nor writes storage.
//
// Business rules:
//   - The order must be constructed and approved
//   - The delivery person must be a valid user id
//   - An expected delivery time, if given, must not precede the assignment
//
// Example usage:
//
//	assigner := services.NewDeliveryAssigner()
//	a, err := assigner.Assign(o, "agent-1", nil, time.Now())
//	if err != nil {
//	    return err
//	}
//	err = o.AssignDelivery(a, time.Now())
type DeliveryAssigner struct{}

func NewDeliveryAssigner() DeliveryAssigner {
	return DeliveryAssigner{}
}

// Assign returns the assignment of deliveryPersonID to o at now.
func (DeliveryAssigner) Assign(
	o *order.Order,
	deliveryPersonID kernel.UserID,
	expectedAt *time.Time,
	now time.Time,
) (order.DeliveryAssignment, error) {
	if err := o.Validate(); err != nil {
		return order.DeliveryAssignment{}, err
	}
	if err := o.Status().ValidateAssign(); err != nil {
		return order.DeliveryAssignment{}, err
	}
	if err := deliveryPersonID.Validate(); err != nil {
		return order.DeliveryAssignment{}, err
	}
	if expectedAt != nil && expectedAt.Before(now) {
		return order.DeliveryAssignment{}, errs.NewValueIsInvalidErrorWithCause("expected at",
			fmt.Errorf("%s: %w", expectedAt.UTC().Format(time.RFC3339), ErrExpectedBeforeAssignment))
	}

	a := order.DeliveryAssignment{
		OrderID:          o.ID(),
		DeliveryPersonID: deliveryPersonID,
		AssignedAt:       now.UTC(),
	}
	if expectedAt != nil {
		expected := expectedAt.UTC()
		a.ExpectedAt = &expected
	}
	return a, nil
}
