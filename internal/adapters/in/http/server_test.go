package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestHealth_NeedsNoToken(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/health", "", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := newRequest(http.MethodGet, "/api/delivery/assignments", "")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := serve(h, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want, decode[Error](t, rec.Body.Bytes()).Code)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	h := newHarness(t)
	req := newRequest(http.MethodGet, "/api/delivery/assignments", "")
	req.Header.Set("Authorization", "Bearer "+token(t, "agent-7", "delivery", -time.Minute))

	rec := serve(h, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UnknownRole(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/delivery/assignments", "", "agent-7", "courier")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongRoleIsForbidden(t *testing.T) {
	h := newHarness(t)
	id := kernel.NewUUID()

	rec := h.do(t, http.MethodPut, "/api/admin/orders/"+id.String()+"/approve", "", "customer-1", "customer")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	h.assertExpectations(t)
}

func TestParseRole(t *testing.T) {
	tests := map[string]Role{
		"customer":     RoleCustomer,
		" Admin ":      RoleAdmin,
		"delivery":     RoleDelivery,
		"delivery boy": RoleDelivery,
		"deliveryBoy":  RoleDelivery,
		"delivery_boy": RoleDelivery,
	}
	for in, want := range tests {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRole("superuser")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCreateOrder(t *testing.T) {
	h := newHarness(t)
	o := testOrder(t, order.Online)
	h.createOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		return cmd.CustomerID() == "customer-1" &&
			cmd.PaymentMethod() == order.Online &&
			len(cmd.Items()) == 1 &&
			cmd.Items()[0].UnitPrice().String() == "120.00" &&
			cmd.CustomerLocation() != nil
	})).Return(commands.TransitionResult{Order: o, Changed: true}, nil).Once()

	rec := h.do(t, http.MethodPost, "/api/orders", `{
		"items": [{"productId": "sku-a", "name": "Cetirizine", "unitPrice": "120", "quantity": 2}],
		"shippingAddress": "12 Park Street, Kolkata",
		"paymentMethod": "online",
		"customerLocation": {"latitude": 22.5, "longitude": 88.3, "accuracy": 10, "capturedAt": "2025-03-14T09:30:00Z"}
	}`, "customer-1", "customer")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[TransitionResponse](t, rec.Body.Bytes())
	assert.Equal(t, o.ID().String(), res.Order.ID)
	assert.Equal(t, "pending", res.Order.Status)
	assert.Equal(t, "333.20", res.Order.Total)
	assert.True(t, res.Changed)
	h.assertExpectations(t)
}

func TestCreateOrder_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty items", `{"items": [], "shippingAddress": "x", "paymentMethod": "online"}`},
		{"zero quantity", `{"items": [{"productId": "a", "name": "b", "unitPrice": "1", "quantity": 0}], "shippingAddress": "x", "paymentMethod": "online"}`},
		{"unknown payment method", `{"items": [{"productId": "a", "name": "b", "unitPrice": "1", "quantity": 1}], "shippingAddress": "x", "paymentMethod": "cheque"}`},
		{"malformed json", `{"items": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			rec := h.do(t, http.MethodPost, "/api/orders", tt.body, "customer-1", "customer")

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			h.assertExpectations(t)
		})
	}
}

func TestGetOrder_Visibility(t *testing.T) {
	agent := kernel.UserID("agent-7")
	view := queries.OrderView{
		ID:               kernel.NewUUID(),
		CustomerID:       "customer-1",
		Status:           "out_for_delivery",
		Subtotal:         decimal.RequireFromString("240"),
		Total:            decimal.RequireFromString("333.2"),
		DeliveryPersonID: &agent,
		DeliveryOtp:      "042917",
		Items:            []queries.OrderItemView{},
	}
	tests := []struct {
		name    string
		sub     string
		role    string
		want    int
		seesOtp bool
	}{
		{"owner", "customer-1", "customer", http.StatusOK, true},
		{"admin", "admin-1", "admin", http.StatusOK, true},
		{"assigned agent", "agent-7", "delivery", http.StatusOK, false},
		{"other customer", "customer-2", "customer", http.StatusForbidden, false},
		{"other agent", "agent-9", "delivery", http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
				return q.OrderID() == view.ID
			})).Return(view, nil).Once()

			rec := h.do(t, http.MethodGet, "/api/orders/"+view.ID.String(), "", tt.sub, tt.role)

			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				res := decode[OrderResponse](t, rec.Body.Bytes())
				assert.Equal(t, "333.20", res.Total)
				assert.Equal(t, "agent-7", res.DeliveryPersonID)
				assert.Equal(t, tt.seesOtp, res.DeliveryOtp != "")
			}
		})
	}
}

func TestGetOrder_NotFoundAndBadID(t *testing.T) {
	h := newHarness(t)
	id := kernel.NewUUID()
	h.getOrder.On("Handle", mock.Anything, mock.Anything).
		Return(queries.OrderView{}, errs.NewObjectNotFoundError("order", id.String())).Once()

	rec := h.do(t, http.MethodGet, "/api/orders/"+id.String(), "", "admin-1", "admin")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/orders/not-a-uuid", "", "admin-1", "admin")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	h.assertExpectations(t)
}

func TestAdminTransitions_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid transition", &order.InvalidTransitionError{From: order.Delivered, Action: "approve"}, http.StatusConflict},
		{"lost race", errs.NewVersionIsInvalidError("order"), http.StatusConflict},
		{"not found", errs.NewObjectNotFoundError("order", "x"), http.StatusNotFound},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.approveOrder.On("Handle", mock.Anything, mock.Anything).
				Return(commands.TransitionResult{}, tt.err).Once()

			rec := h.do(t, http.MethodPut, "/api/admin/orders/"+kernel.NewUUID().String()+"/approve", "", "admin-1", "admin")

			assert.Equal(t, tt.want, rec.Code)
			body := decode[Error](t, rec.Body.Bytes())
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "connection reset")
			}
		})
	}
}

func TestCancelOrder_RequesterDependsOnRole(t *testing.T) {
	h := newHarness(t)
	o := testOrder(t, order.CashOnDelivery)
	require.NoError(t, o.Cancel("changed my mind", time.Now()))

	mock.InOrder(
		h.cancelOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CancelOrderCommand) bool {
			return cmd.Requester() != nil && *cmd.Requester() == "customer-1" && cmd.Reason() == "changed my mind"
		})).Return(commands.TransitionResult{Order: o, Changed: true}, nil).Once(),
		h.cancelOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CancelOrderCommand) bool {
			return cmd.Requester() == nil
		})).Return(commands.TransitionResult{}, commands.ErrNotPermitted).Once(),
	)

	rec := h.do(t, http.MethodPut, "/api/admin/orders/"+o.ID().String()+"/cancel",
		`{"reason": "changed my mind"}`, "customer-1", "customer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[TransitionResponse](t, rec.Body.Bytes()).Order.Status)

	rec = h.do(t, http.MethodPut, "/api/admin/orders/"+o.ID().String()+"/cancel", `{}`, "admin-1", "admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	h.assertExpectations(t)
}

func TestAssignDelivery(t *testing.T) {
	h := newHarness(t)
	o := testOrder(t, order.CashOnDelivery)
	expected := time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)
	h.assignDelivery.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.AssignDeliveryCommand) bool {
		return cmd.DeliveryPersonID() == "agent-7" && cmd.ExpectedAt() != nil && cmd.ExpectedAt().Equal(expected)
	})).Return(commands.TransitionResult{Order: o, Changed: true}, nil).Once()

	rec := h.do(t, http.MethodPut, "/api/admin/orders/"+o.ID().String()+"/assign",
		`{"deliveryPersonId": "agent-7", "expectedAt": "2030-01-02T15:00:00Z"}`, "admin-1", "admin")

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	h.assertExpectations(t)
}

func TestMarkOutForDelivery_AdminSeesOtp(t *testing.T) {
	h := newHarness(t)
	o := dispatched(t, testOrder(t, order.CashOnDelivery), "agent-7")
	h.markOutForDelivery.On("Handle", mock.Anything, mock.Anything).
		Return(commands.TransitionResult{Order: o, Changed: true}, nil).Once()

	rec := h.do(t, http.MethodPut, "/api/admin/orders/"+o.ID().String()+"/out-for-delivery", "", "admin-1", "admin")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "042917", decode[TransitionResponse](t, rec.Body.Bytes()).Order.DeliveryOtp)
}

func TestUpdateDeliveryStatus(t *testing.T) {
	h := newHarness(t)
	o := dispatched(t, testOrder(t, order.CashOnDelivery), "agent-7")
	h.updateStatus.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.UpdateDeliveryStatusCommand) bool {
		return cmd.Update() == commands.DeliveryInTransit && cmd.Agent() == "agent-7"
	})).Return(commands.TransitionResult{Order: o}, nil).Once()

	rec := h.do(t, http.MethodPut, "/api/delivery/assignments/"+o.ID().String()+"/status",
		`{"status": "In-Transit"}`, "agent-7", "delivery boy")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[TransitionResponse](t, rec.Body.Bytes())
	assert.Empty(t, res.Order.DeliveryOtp)
	assert.False(t, res.Changed)
	h.assertExpectations(t)
}

func TestUpdateDeliveryStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"unknown status", `{"status": "teleported"}`, nil, http.StatusBadRequest},
		{"delivered without otp", `{"status": "delivered"}`, nil, http.StatusBadRequest},
		{"otp mismatch", `{"status": "delivered", "otp": "000000"}`, order.ErrOtpMismatch, http.StatusUnprocessableEntity},
		{"attempts exceeded", `{"status": "delivered", "otp": "000000"}`, commands.ErrOtpAttemptsExceeded, http.StatusTooManyRequests},
		{"not assigned", `{"status": "picked"}`, commands.ErrNotPermitted, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.err != nil {
				h.updateStatus.On("Handle", mock.Anything, mock.Anything).
					Return(commands.TransitionResult{}, tt.err).Once()
			}

			rec := h.do(t, http.MethodPut, "/api/delivery/assignments/"+kernel.NewUUID().String()+"/status",
				tt.body, "agent-7", "delivery")

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			h.assertExpectations(t)
		})
	}
}

func TestListAssignments(t *testing.T) {
	h := newHarness(t)
	id := kernel.NewUUID()
	h.listAssignments.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListDeliveryAssignmentsQuery) bool {
		return q.Agent() == "agent-7"
	})).Return([]queries.AssignmentView{{
		OrderID: id, Status: "approved", Total: decimal.RequireFromString("108"),
	}}, nil).Once()

	rec := h.do(t, http.MethodGet, "/api/delivery/assignments", "", "agent-7", "delivery")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[[]AssignmentResponse](t, rec.Body.Bytes())
	require.Len(t, res, 1)
	assert.Equal(t, id.String(), res[0].OrderID)
	assert.Equal(t, "108.00", res[0].Total)
}

func TestCreatePayment(t *testing.T) {
	h := newHarness(t)
	o := testOrder(t, order.Online)
	h.createPayment.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreatePaymentCommand) bool {
		return cmd.OrderID() == o.ID() && cmd.Requester() == "customer-1"
	})).Return(commands.CreatePaymentResult{
		Order:        o,
		GatewayOrder: ports.GatewayOrder{ID: "order_N1", AmountMinorUnits: 33320, Currency: "INR"},
	}, nil).Once()

	rec := h.do(t, http.MethodPost, "/api/payment/create-order", `{"orderId": "`+o.ID().String()+`"}`, "customer-1", "customer")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, PaymentIntentResponse{
		OrderID: o.ID().String(), GatewayOrderID: "order_N1", Amount: 33320, Currency: "INR",
	}, decode[PaymentIntentResponse](t, rec.Body.Bytes()))
}

func TestCreatePayment_GatewayDown(t *testing.T) {
	h := newHarness(t)
	h.createPayment.On("Handle", mock.Anything, mock.Anything).
		Return(commands.CreatePaymentResult{}, payments.ErrGatewayUnavailable).Once()

	rec := h.do(t, http.MethodPost, "/api/payment/create-order", `{"orderId": "`+kernel.NewUUID().String()+`"}`, "customer-1", "customer")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVerifyPayment(t *testing.T) {
	h := newHarness(t)
	o := testOrder(t, order.Online)
	mock.InOrder(
		h.confirmPayment.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ConfirmPaymentCommand) bool {
			return cmd.GatewayOrderID() == "order_N1" && cmd.GatewayPaymentID() == "pay_1" && cmd.Signature() == "good"
		})).Return(commands.TransitionResult{Order: o, Changed: true}, nil).Once(),
		h.confirmPayment.On("Handle", mock.Anything, mock.Anything).
			Return(commands.TransitionResult{}, payments.ErrVerificationFailed).Once(),
	)
	body := func(sig string) string {
		return `{"orderId": "` + o.ID().String() + `", "gatewayOrderId": "order_N1", "gatewayPaymentId": "pay_1", "signature": "` + sig + `"}`
	}

	rec := h.do(t, http.MethodPost, "/api/payment/verify", body("good"), "customer-1", "customer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[VerifyPaymentResponse](t, rec.Body.Bytes()).Verified)

	rec = h.do(t, http.MethodPost, "/api/payment/verify", body("bad"), "customer-1", "customer")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	h.assertExpectations(t)
}

func TestOrderNotifications(t *testing.T) {
	tests := []struct {
		path     string
		role     string
		template notifications.TemplateType
		asAgent  bool
	}{
		{"/api/notifications/order-confirmation", "admin", notifications.TemplateOrderConfirmation, false},
		{"/api/notifications/order-status-update", "admin", notifications.TemplateOrderStatusUpdate, false},
		{"/api/notifications/order-status-update", "delivery", notifications.TemplateOrderStatusUpdate, true},
		{"/api/notifications/delivery-assignment", "admin", notifications.TemplateDeliveryAssignment, false},
	}
	for _, tt := range tests {
		t.Run(tt.path+" as "+tt.role, func(t *testing.T) {
			h := newHarness(t)
			id := kernel.NewUUID()
			report := notifications.Report{Attempts: []notifications.NotificationAttempt{{
				Channel: notifications.ChannelEmail, Target: "asha@example.com", TemplateType: tt.template, Success: true,
			}}}
			h.sendNotification.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.SendOrderNotificationCommand) bool {
				return cmd.OrderID() == id && cmd.Template() == tt.template && (cmd.Agent() != nil) == tt.asAgent
			})).Return(report, nil).Once()

			rec := h.do(t, http.MethodPost, tt.path, `{"orderId": "`+id.String()+`"}`, "user-1", tt.role)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			got := decode[notifications.Report](t, rec.Body.Bytes())
			require.Len(t, got.Attempts, 1)
			assert.True(t, got.Attempts[0].Success)
			h.assertExpectations(t)
		})
	}
}

func TestOrderNotifications_DeliveryCannotSendConfirmation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/notifications/order-confirmation",
		`{"orderId": "`+kernel.NewUUID().String()+`"}`, "agent-7", "delivery")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	h.assertExpectations(t)
}

func TestGenerateOtp(t *testing.T) {
	h := newHarness(t)
	mock.InOrder(
		h.otp.On("Generate", 6).Return("004211", nil).Once(),
		h.otp.On("Generate", 4).Return("0042", nil).Once(),
		h.otp.On("Generate", 40).Return("", errs.NewValueIsOutOfRangeError("otp length", 40, 1, 12)).Once(),
	)

	rec := h.do(t, http.MethodPost, "/api/notifications/generate-otp", "", "admin-1", "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "004211", decode[OtpResponse](t, rec.Body.Bytes()).Otp)

	rec = h.do(t, http.MethodPost, "/api/notifications/generate-otp", `{"length": 4}`, "agent-7", "delivery")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0042", decode[OtpResponse](t, rec.Body.Bytes()).Otp)

	rec = h.do(t, http.MethodPost, "/api/notifications/generate-otp", `{"length": 40}`, "admin-1", "admin")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	h.assertExpectations(t)
}

func TestSendPush_ReportsNoDevicesInBody(t *testing.T) {
	h := newHarness(t)
	h.push.On("SendPush", mock.Anything, kernel.UserID("customer-1"), ports.PushMessage{
		Title: "Hello", Body: "World", Data: map[string]string{"k": "v"},
	}).Return(notifications.PushResult{Error: notifications.ErrNoDevices.Error()}).Once()

	rec := h.do(t, http.MethodPost, "/api/notifications/push",
		`{"userId": "customer-1", "title": "Hello", "body": "World", "data": {"k": "v"}}`, "admin-1", "admin")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[notifications.PushResult](t, rec.Body.Bytes())
	assert.False(t, res.Success)
	assert.Equal(t, "NoDevices", res.Error)
	h.assertExpectations(t)
}

func TestRegisterDevice(t *testing.T) {
	h := newHarness(t)
	h.devices.On("Register", mock.Anything, kernel.UserID("agent-7"), "tok-a").Return(nil).Once()

	rec := h.do(t, http.MethodPost, "/api/notifications/devices", `{"token": "tok-a"}`, "agent-7", "delivery")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	h.assertExpectations(t)
}

func TestStatusOf_GatewayRejected(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, StatusOf(ports.ErrGatewayRejected))
	assert.Equal(t, http.StatusConflict, StatusOf(order.ErrNotOnlinePayment))
	assert.Equal(t, http.StatusBadRequest, StatusOf(order.ErrEmptyOrder))
}
