package http

import (
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type (
	ItemRequest struct {
		ProductID            string          `json:"productId"`
		Name                 string          `json:"name"`
		UnitPrice            decimal.Decimal `json:"unitPrice"`
		Quantity             int             `json:"quantity"`
		RequiresPrescription bool            `json:"requiresPrescription"`
	}

	LocationRequest struct {
		Latitude   float64   `json:"latitude"`
		Longitude  float64   `json:"longitude"`
		Accuracy   float64   `json:"accuracy"`
		CapturedAt time.Time `json:"capturedAt"`
	}

	CreateOrderRequest struct {
		Items            []ItemRequest    `json:"items"`
		ShippingAddress  string           `json:"shippingAddress"`
		PaymentMethod    string           `json:"paymentMethod"`
		CustomerLocation *LocationRequest `json:"customerLocation,omitempty"`
	}

	CancelOrderRequest struct {
		Reason string `json:"reason"`
	}

	AssignDeliveryRequest struct {
		DeliveryPersonID string     `json:"deliveryPersonId"`
		ExpectedAt       *time.Time `json:"expectedAt,omitempty"`
	}

	DeliveryStatusRequest struct {
		Status string `json:"status"`
		Otp    string `json:"otp,omitempty"`
	}

	CreatePaymentRequest struct {
		OrderID  string `json:"orderId"`
		Currency string `json:"currency,omitempty"`
	}

	VerifyPaymentRequest struct {
		OrderID          string `json:"orderId"`
		GatewayOrderID   string `json:"gatewayOrderId"`
		GatewayPaymentID string `json:"gatewayPaymentId"`
		Signature        string `json:"signature"`
	}

	OrderNotificationRequest struct {
		OrderID string `json:"orderId"`
	}

	GenerateOtpRequest struct {
		Length int `json:"length,omitempty"`
	}

	PushRequest struct {
		UserID string            `json:"userId"`
		Title  string            `json:"title"`
		Body   string            `json:"body"`
		Data   map[string]string `json:"data,omitempty"`
	}

	RegisterDeviceRequest struct {
		Token string `json:"token"`
	}
)

type (
	ItemResponse struct {
		ProductID            string `json:"productId"`
		Name                 string `json:"name"`
		UnitPrice            string `json:"unitPrice"`
		Quantity             int    `json:"quantity"`
		RequiresPrescription bool   `json:"requiresPrescription"`
	}

	OrderResponse struct {
		ID                 string         `json:"id"`
		CustomerID         string         `json:"customerId"`
		Status             string         `json:"status"`
		PaymentMethod      string         `json:"paymentMethod"`
		PaymentStatus      string         `json:"paymentStatus"`
		GatewayOrderID     string         `json:"gatewayOrderId,omitempty"`
		Items              []ItemResponse `json:"items"`
		Subtotal           string         `json:"subtotal"`
		Tax                string         `json:"tax"`
		DeliveryFee        string         `json:"deliveryFee"`
		Total              string         `json:"total"`
		ShippingAddress    string         `json:"shippingAddress"`
		DeliveryPersonID   string         `json:"deliveryPersonId,omitempty"`
		AssignedAt         *time.Time     `json:"assignedAt,omitempty"`
		ExpectedDeliveryAt *time.Time     `json:"expectedDeliveryAt,omitempty"`
		DeliveryOtp        string         `json:"deliveryOtp,omitempty"`
		CancelReason       string         `json:"cancelReason,omitempty"`
		CreatedAt          time.Time      `json:"createdAt"`
		UpdatedAt          time.Time      `json:"updatedAt"`
		Version            int64          `json:"version"`
	}

	TransitionResponse struct {
		Order         OrderResponse        `json:"order"`
		Changed       bool                 `json:"changed"`
		Notifications notifications.Report `json:"notifications"`
	}

	PaymentIntentResponse struct {
		OrderID        string `json:"orderId"`
		GatewayOrderID string `json:"gatewayOrderId"`
		Amount         int64  `json:"amount"`
		Currency       string `json:"currency"`
	}

	VerifyPaymentResponse struct {
		Verified      bool                 `json:"verified"`
		Changed       bool                 `json:"changed"`
		Order         OrderResponse        `json:"order"`
		Notifications notifications.Report `json:"notifications"`
	}

	AssignmentResponse struct {
		OrderID            string     `json:"orderId"`
		Status             string     `json:"status"`
		ShippingAddress    string     `json:"shippingAddress"`
		PaymentMethod      string     `json:"paymentMethod"`
		Total              string     `json:"total"`
		AssignedAt         *time.Time `json:"assignedAt,omitempty"`
		ExpectedDeliveryAt *time.Time `json:"expectedDeliveryAt,omitempty"`
	}

	OtpResponse struct {
		Otp string `json:"otp"`
	}
)

// canSeeOtp limits the delivery code to the customer who hands it over and
// to admins. Delivery agents must obtain it from the customer.
func canSeeOtp(p Principal, customerID kernel.UserID) bool {
	return p.Role == RoleAdmin || (p.Role == RoleCustomer && p.UserID == customerID)
}

func orderFromAggregate(o *order.Order, p Principal) OrderResponse {
	amounts := o.Amounts()
	res := OrderResponse{
		ID:                 o.ID().String(),
		CustomerID:         o.CustomerID().String(),
		Status:             o.Status().String(),
		PaymentMethod:      o.PaymentMethod().String(),
		PaymentStatus:      o.PaymentStatus().String(),
		Items:              make([]ItemResponse, 0, len(o.Items())),
		Subtotal:           amounts.Subtotal().String(),
		Tax:                amounts.Tax().String(),
		DeliveryFee:        amounts.DeliveryFee().String(),
		Total:              amounts.Total().String(),
		ShippingAddress:    o.ShippingAddress(),
		AssignedAt:         o.AssignedAt(),
		ExpectedDeliveryAt: o.ExpectedDeliveryAt(),
		CancelReason:       o.CancelReason(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
		Version:            o.Version(),
	}
	for _, it := range o.Items() {
		res.Items = append(res.Items, ItemResponse{
			ProductID:            it.ProductID(),
			Name:                 it.Name(),
			UnitPrice:            it.UnitPrice().String(),
			Quantity:             it.Quantity(),
			RequiresPrescription: it.RequiresPrescription(),
		})
	}
	if d := o.PaymentDetails(); d != nil {
		res.GatewayOrderID = d.GatewayOrderID
	}
	if person := o.DeliveryPerson(); person != nil {
		res.DeliveryPersonID = person.String()
	}
	if canSeeOtp(p, o.CustomerID()) {
		res.DeliveryOtp = o.DeliveryOtp()
	}
	return res
}

func orderFromView(v queries.OrderView, p Principal) OrderResponse {
	res := OrderResponse{
		ID:                 v.ID.String(),
		CustomerID:         v.CustomerID.String(),
		Status:             v.Status,
		PaymentMethod:      v.PaymentMethod,
		PaymentStatus:      v.PaymentStatus,
		Items:              make([]ItemResponse, 0, len(v.Items)),
		Subtotal:           v.Subtotal.StringFixed(2),
		Tax:                v.Tax.StringFixed(2),
		DeliveryFee:        v.DeliveryFee.StringFixed(2),
		Total:              v.Total.StringFixed(2),
		ShippingAddress:    v.ShippingAddress,
		AssignedAt:         v.AssignedAt,
		ExpectedDeliveryAt: v.ExpectedDeliveryAt,
		CancelReason:       v.CancelReason,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
		Version:            v.Version,
	}
	for _, it := range v.Items {
		res.Items = append(res.Items, ItemResponse{
			ProductID:            it.ProductID,
			Name:                 it.Name,
			UnitPrice:            it.UnitPrice.StringFixed(2),
			Quantity:             it.Quantity,
			RequiresPrescription: it.RequiresPrescription,
		})
	}
	if v.GatewayOrderID != nil {
		res.GatewayOrderID = *v.GatewayOrderID
	}
	if v.DeliveryPersonID != nil {
		res.DeliveryPersonID = v.DeliveryPersonID.String()
	}
	if canSeeOtp(p, v.CustomerID) {
		res.DeliveryOtp = v.DeliveryOtp
	}
	return res
}

func transitionResponse(res commands.TransitionResult, p Principal) TransitionResponse {
	return TransitionResponse{
		Order:         orderFromAggregate(res.Order, p),
		Changed:       res.Changed,
		Notifications: res.Notifications,
	}
}

func assignmentsResponse(views []queries.AssignmentView) []AssignmentResponse {
	res := make([]AssignmentResponse, 0, len(views))
	for _, v := range views {
		res = append(res, AssignmentResponse{
			OrderID:            v.OrderID.String(),
			Status:             v.Status,
			ShippingAddress:    v.ShippingAddress,
			PaymentMethod:      v.PaymentMethod,
			Total:              v.Total.StringFixed(2),
			AssignedAt:         v.AssignedAt,
			ExpectedDeliveryAt: v.ExpectedDeliveryAt,
		})
	}
	return res
}
