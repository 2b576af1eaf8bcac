package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListUnpaidOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListUnpaidOrdersQueryHandler(db *gorm.DB) ListUnpaidOrdersQueryHandler {
	return ListUnpaidOrdersQueryHandler{db: db}
}

// Handle returns order ids only; the expiry command re-checks each order
// inside its own transaction.
func (h ListUnpaidOrdersQueryHandler) Handle(ctx context.Context, query ListUnpaidOrdersQuery) ([]kernel.UUID, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id
		FROM orders
		WHERE status = ?
			AND payment_method = ?
			AND payment_status <> ?
			AND created_at < ?
		ORDER BY created_at
		LIMIT ?
	`, order.Pending.String(), order.Online.String(), order.PaymentCompleted.String(),
		query.Cutoff().UTC(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, orderID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
