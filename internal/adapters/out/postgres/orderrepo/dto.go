// Package orderrepo maps the order aggregate onto the orders and order_items
// tables and implements ports.OrderRepository on top of GORM.
package orderrepo

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row. Money columns are numeric(12,2).
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID      string          `gorm:"type:varchar(128);index;not null"`
	Status          string          `gorm:"type:varchar(32);index;not null"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryFee     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod   string          `gorm:"type:varchar(32);not null"`
	PaymentStatus   string          `gorm:"type:varchar(16);not null"`
	Payment         PaymentDTO      `gorm:"embedded;embeddedPrefix:payment_"`
	ShippingAddress string          `gorm:"type:text;not null"`
	Location        LocationDTO     `gorm:"embedded;embeddedPrefix:customer_location_"`

	DeliveryPersonID   *string `gorm:"type:varchar(128);index"`
	AssignedAt         *time.Time
	ExpectedDeliveryAt *time.Time
	DeliveryOtp        string `gorm:"type:varchar(12)"`

	CancelReason string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
	Version      int64     `gorm:"not null"`

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// PaymentDTO holds the gateway columns; all of them are null until a payment
// intent exists.
type PaymentDTO struct {
	GatewayOrderID   *string `gorm:"type:varchar(64);index"`
	AmountMinorUnits *int64
	GatewayPaymentID *string `gorm:"type:varchar(64)"`
	Signature        *string `gorm:"type:varchar(128)"`
	CapturedAmount   *int64
	VerifiedAt       *time.Time
}

type LocationDTO struct {
	Latitude   *float64
	Longitude  *float64
	Accuracy   *float64
	CapturedAt *time.Time
}

// OrderItemDTO is one order_items row. Position keeps the checkout order.
type OrderItemDTO struct {
	ID                   uint            `gorm:"primaryKey;autoIncrement"`
	OrderID              uuid.UUID       `gorm:"type:uuid;index;not null"`
	Position             int             `gorm:"not null"`
	ProductID            string          `gorm:"type:varchar(64);not null"`
	Name                 string          `gorm:"type:text;not null"`
	UnitPrice            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity             int             `gorm:"not null"`
	RequiresPrescription bool            `gorm:"not null;default:false"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:                 o.ID().Bytes(),
		CustomerID:         o.CustomerID().String(),
		Status:             o.Status().String(),
		Subtotal:           o.Amounts().Subtotal().Decimal(),
		Tax:                o.Amounts().Tax().Decimal(),
		DeliveryFee:        o.Amounts().DeliveryFee().Decimal(),
		Total:              o.Amounts().Total().Decimal(),
		PaymentMethod:      o.PaymentMethod().String(),
		PaymentStatus:      o.PaymentStatus().String(),
		ShippingAddress:    o.ShippingAddress(),
		AssignedAt:         o.AssignedAt(),
		ExpectedDeliveryAt: o.ExpectedDeliveryAt(),
		DeliveryOtp:        o.DeliveryOtp(),
		CancelReason:       o.CancelReason(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
		Version:            o.Version(),
	}

	if d := o.PaymentDetails(); d != nil {
		dto.Payment = PaymentDTO{
			GatewayOrderID:   &d.GatewayOrderID,
			AmountMinorUnits: &d.AmountMinorUnits,
			VerifiedAt:       d.VerifiedAt,
		}
		if d.IsVerified() {
			dto.Payment.GatewayPaymentID = &d.GatewayPaymentID
			dto.Payment.Signature = &d.Signature
			dto.Payment.CapturedAmount = &d.CapturedAmount
		}
	}

	if loc := o.CustomerLocation(); loc != nil {
		lat, lng, acc, at := loc.Latitude(), loc.Longitude(), loc.Accuracy(), loc.CapturedAt()
		dto.Location = LocationDTO{Latitude: &lat, Longitude: &lng, Accuracy: &acc, CapturedAt: &at}
	}

	if person := o.DeliveryPerson(); person != nil {
		id := person.String()
		dto.DeliveryPersonID = &id
	}

	items := o.Items()
	dto.Items = make([]OrderItemDTO, 0, len(items))
	for i, item := range items {
		dto.Items = append(dto.Items, OrderItemDTO{
			OrderID:              dto.ID,
			Position:             i,
			ProductID:            item.ProductID(),
			Name:                 item.Name(),
			UnitPrice:            item.UnitPrice().Decimal(),
			Quantity:             item.Quantity(),
			RequiresPrescription: item.RequiresPrescription(),
		})
	}

	return dto
}

// mutableColumns lists what an update may change. Items, customer and
// creation time are immutable.
func mutableColumns(dto OrderDTO) map[string]any {
	return map[string]any{
		"status":                     dto.Status,
		"payment_status":             dto.PaymentStatus,
		"payment_gateway_order_id":   dto.Payment.GatewayOrderID,
		"payment_amount_minor_units": dto.Payment.AmountMinorUnits,
		"payment_gateway_payment_id": dto.Payment.GatewayPaymentID,
		"payment_signature":          dto.Payment.Signature,
		"payment_captured_amount":    dto.Payment.CapturedAmount,
		"payment_verified_at":        dto.Payment.VerifiedAt,
		"delivery_person_id":         dto.DeliveryPersonID,
		"assigned_at":                dto.AssignedAt,
		"expected_delivery_at":       dto.ExpectedDeliveryAt,
		"delivery_otp":               dto.DeliveryOtp,
		"cancel_reason":              dto.CancelReason,
		"updated_at":                 dto.UpdatedAt,
		"version":                    dto.Version,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		price, priceErr := kernel.NewMoney(itemDTO.UnitPrice)
		if priceErr != nil {
			return nil, priceErr
		}
		item, itemErr := order.NewItem(itemDTO.ProductID, itemDTO.Name, price, itemDTO.Quantity, itemDTO.RequiresPrescription)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	amounts, err := restoreAmounts(dto)
	if err != nil {
		return nil, err
	}

	location, err := restoreLocation(dto.Location)
	if err != nil {
		return nil, err
	}

	var deliveryPerson *kernel.UserID
	if dto.DeliveryPersonID != nil {
		person := kernel.UserID(*dto.DeliveryPersonID)
		deliveryPerson = &person
	}

	return order.RestoreOrder(order.RestoreParams{
		ID:                 id,
		CustomerID:         kernel.UserID(dto.CustomerID),
		Status:             status,
		Items:              items,
		Amounts:            amounts,
		PaymentMethod:      order.PaymentMethod(dto.PaymentMethod),
		PaymentStatus:      order.PaymentStatus(dto.PaymentStatus),
		PaymentDetails:     restorePayment(dto.Payment),
		ShippingAddress:    dto.ShippingAddress,
		CustomerLocation:   location,
		DeliveryPersonID:   deliveryPerson,
		AssignedAt:         utc(dto.AssignedAt),
		ExpectedDeliveryAt: utc(dto.ExpectedDeliveryAt),
		DeliveryOtp:        dto.DeliveryOtp,
		CancelReason:       dto.CancelReason,
		CreatedAt:          dto.CreatedAt.UTC(),
		UpdatedAt:          dto.UpdatedAt.UTC(),
		Version:            dto.Version,
	})
}

func restoreAmounts(dto OrderDTO) (order.Amounts, error) {
	var errList []error
	money := func(d decimal.Decimal) kernel.Money {
		m, err := kernel.NewMoney(d)
		errList = append(errList, err)
		return m
	}
	subtotal, tax, fee, total := money(dto.Subtotal), money(dto.Tax), money(dto.DeliveryFee), money(dto.Total)
	if err := errors.Join(errList...); err != nil {
		return order.Amounts{}, err
	}
	return order.RestoreAmounts(subtotal, tax, fee, total)
}

func restorePayment(dto PaymentDTO) *order.PaymentDetails {
	if dto.GatewayOrderID == nil {
		return nil
	}
	details := &order.PaymentDetails{GatewayOrderID: *dto.GatewayOrderID, VerifiedAt: utc(dto.VerifiedAt)}
	if dto.AmountMinorUnits != nil {
		details.AmountMinorUnits = *dto.AmountMinorUnits
	}
	if dto.GatewayPaymentID != nil {
		details.GatewayPaymentID = *dto.GatewayPaymentID
	}
	if dto.Signature != nil {
		details.Signature = *dto.Signature
	}
	if dto.CapturedAmount != nil {
		details.CapturedAmount = *dto.CapturedAmount
	}
	return details
}

func restoreLocation(dto LocationDTO) (*kernel.GeoPoint, error) {
	if dto.Latitude == nil || dto.Longitude == nil || dto.CapturedAt == nil {
		return nil, nil //nolint:nilnil // no location captured
	}
	var accuracy float64
	if dto.Accuracy != nil {
		accuracy = *dto.Accuracy
	}
	point, err := kernel.NewGeoPoint(*dto.Latitude, *dto.Longitude, accuracy, *dto.CapturedAt)
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
