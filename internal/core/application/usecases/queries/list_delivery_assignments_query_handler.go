package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListDeliveryAssignmentsQueryHandler struct {
	db *gorm.DB
}

func NewListDeliveryAssignmentsQueryHandler(db *gorm.DB) ListDeliveryAssignmentsQueryHandler {
	return ListDeliveryAssignmentsQueryHandler{db: db}
}

// Handle orders results by expected delivery time, unscheduled last.
func (h ListDeliveryAssignmentsQueryHandler) Handle(
	ctx context.Context,
	query ListDeliveryAssignmentsQuery,
) ([]AssignmentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	assignments := make([]AssignmentView, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			shipping_address,
			payment_method,
			total,
			assigned_at,
			expected_delivery_at
		FROM orders
		WHERE delivery_person_id = ?
			AND status IN (?, ?)
		ORDER BY expected_delivery_at NULLS LAST, assigned_at
	`, query.Agent().String(), order.Approved.String(), order.OutForDelivery.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			view       AssignmentView
			id         uuid.UUID
			total      decimal.Decimal
			assignedAt *time.Time
			expectedAt *time.Time
		)
		if err = rows.Scan(&id, &view.Status, &view.ShippingAddress, &view.PaymentMethod,
			&total, &assignedAt, &expectedAt); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		view.OrderID = orderID
		view.Total = total
		view.AssignedAt = assignedAt
		view.ExpectedDeliveryAt = expectedAt
		assignments = append(assignments, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
