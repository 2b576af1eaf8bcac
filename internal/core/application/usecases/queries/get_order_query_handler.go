package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler returns errs.ErrObjectNotFound for unknown ids.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

type orderRow struct {
	ID                 uuid.UUID
	CustomerID         string
	Status             string
	PaymentMethod      string
	PaymentStatus      string
	GatewayOrderID     *string
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	DeliveryFee        decimal.Decimal
	Total              decimal.Decimal
	ShippingAddress    string
	DeliveryPersonID   *string
	AssignedAt         *time.Time
	ExpectedDeliveryAt *time.Time
	DeliveryOtp        string
	CancelReason       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	db := h.db.WithContext(ctx)

	var rows []orderRow
	err := db.Raw(`
		SELECT
			id,
			customer_id,
			status,
			payment_method,
			payment_status,
			payment_gateway_order_id AS gateway_order_id,
			subtotal,
			tax,
			delivery_fee,
			total,
			shipping_address,
			delivery_person_id,
			assigned_at,
			expected_delivery_at,
			delivery_otp,
			cancel_reason,
			created_at,
			updated_at,
			version
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Scan(&rows).Error
	if err != nil {
		return OrderView{}, err
	}
	if len(rows) == 0 {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	row := rows[0]

	view := OrderView{
		ID:                 query.OrderID(),
		CustomerID:         kernel.UserID(row.CustomerID),
		Status:             row.Status,
		PaymentMethod:      row.PaymentMethod,
		PaymentStatus:      row.PaymentStatus,
		GatewayOrderID:     row.GatewayOrderID,
		Subtotal:           row.Subtotal,
		Tax:                row.Tax,
		DeliveryFee:        row.DeliveryFee,
		Total:              row.Total,
		ShippingAddress:    row.ShippingAddress,
		AssignedAt:         row.AssignedAt,
		ExpectedDeliveryAt: row.ExpectedDeliveryAt,
		DeliveryOtp:        row.DeliveryOtp,
		CancelReason:       row.CancelReason,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
		Version:            row.Version,
		Items:              make([]OrderItemView, 0),
	}
	if row.DeliveryPersonID != nil {
		person := kernel.UserID(*row.DeliveryPersonID)
		view.DeliveryPersonID = &person
	}

	itemRows, err := db.Raw(`
		SELECT
			product_id,
			name,
			unit_price,
			quantity,
			requires_prescription
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return OrderView{}, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item OrderItemView
		if err = itemRows.Scan(
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.RequiresPrescription,
		); err != nil {
			return OrderView{}, err
		}
		view.Items = append(view.Items, item)
	}

	if err = itemRows.Err(); err != nil {
		return OrderView{}, err
	}

	return view, nil
}
