package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockHandler[In, Out any] struct {
	mock.Mock
}

func (m *MockHandler[In, Out]) Handle(ctx context.Context, in In) (Out, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(Out)
	return out, args.Error(1)
}

type MockOtpIssuer struct{ mock.Mock }

func (m *MockOtpIssuer) Generate(length int) (string, error) {
	args := m.Called(length)
	return args.String(0), args.Error(1)
}

type MockPushSender struct{ mock.Mock }

func (m *MockPushSender) SendPush(ctx context.Context, userID kernel.UserID, msg ports.PushMessage) notifications.PushResult {
	return m.Called(ctx, userID, msg).Get(0).(notifications.PushResult)
}

type MockDeviceRegistry struct{ mock.Mock }

func (m *MockDeviceRegistry) Register(ctx context.Context, userID kernel.UserID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

type harness struct {
	e                  *echo.Echo
	createOrder        *MockHandler[commands.CreateOrderCommand, commands.TransitionResult]
	approveOrder       *MockHandler[commands.ApproveOrderCommand, commands.TransitionResult]
	cancelOrder        *MockHandler[commands.CancelOrderCommand, commands.TransitionResult]
	markOutForDelivery *MockHandler[commands.MarkOutForDeliveryCommand, commands.TransitionResult]
	assignDelivery     *MockHandler[commands.AssignDeliveryCommand, commands.TransitionResult]
	updateStatus       *MockHandler[commands.UpdateDeliveryStatusCommand, commands.TransitionResult]
	createPayment      *MockHandler[commands.CreatePaymentCommand, commands.CreatePaymentResult]
	confirmPayment     *MockHandler[commands.ConfirmPaymentCommand, commands.TransitionResult]
	sendNotification   *MockHandler[commands.SendOrderNotificationCommand, notifications.Report]
	getOrder           *MockHandler[queries.GetOrderQuery, queries.OrderView]
	listAssignments    *MockHandler[queries.ListDeliveryAssignmentsQuery, []queries.AssignmentView]
	otp                *MockOtpIssuer
	push               *MockPushSender
	devices            *MockDeviceRegistry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		createOrder:        new(MockHandler[commands.CreateOrderCommand, commands.TransitionResult]),
		approveOrder:       new(MockHandler[commands.ApproveOrderCommand, commands.TransitionResult]),
		cancelOrder:        new(MockHandler[commands.CancelOrderCommand, commands.TransitionResult]),
		markOutForDelivery: new(MockHandler[commands.MarkOutForDeliveryCommand, commands.TransitionResult]),
		assignDelivery:     new(MockHandler[commands.AssignDeliveryCommand, commands.TransitionResult]),
		updateStatus:       new(MockHandler[commands.UpdateDeliveryStatusCommand, commands.TransitionResult]),
		createPayment:      new(MockHandler[commands.CreatePaymentCommand, commands.CreatePaymentResult]),
		confirmPayment:     new(MockHandler[commands.ConfirmPaymentCommand, commands.TransitionResult]),
		sendNotification:   new(MockHandler[commands.SendOrderNotificationCommand, notifications.Report]),
		getOrder:           new(MockHandler[queries.GetOrderQuery, queries.OrderView]),
		listAssignments:    new(MockHandler[queries.ListDeliveryAssignmentsQuery, []queries.AssignmentView]),
		otp:                new(MockOtpIssuer),
		push:               new(MockPushSender),
		devices:            new(MockDeviceRegistry),
	}
	auth, err := NewAuthenticator(testSecret)
	require.NoError(t, err)

	server := NewServer(UseCases{
		CreateOrder:          h.createOrder,
		ApproveOrder:         h.approveOrder,
		CancelOrder:          h.cancelOrder,
		MarkOutForDelivery:   h.markOutForDelivery,
		AssignDelivery:       h.assignDelivery,
		UpdateDeliveryStatus: h.updateStatus,
		CreatePayment:        h.createPayment,
		ConfirmPayment:       h.confirmPayment,
		SendNotification:     h.sendNotification,
		GetOrder:             h.getOrder,
		ListAssignments:      h.listAssignments,
		Otp:                  h.otp,
		Push:                 h.push,
		Devices:              h.devices,
	}, auth)
	h.e, err = NewEcho(server, Options{})
	require.NoError(t, err)
	return h
}

func (h *harness) assertExpectations(t *testing.T) {
	t.Helper()
	h.createOrder.AssertExpectations(t)
	h.approveOrder.AssertExpectations(t)
	h.cancelOrder.AssertExpectations(t)
	h.markOutForDelivery.AssertExpectations(t)
	h.assignDelivery.AssertExpectations(t)
	h.updateStatus.AssertExpectations(t)
	h.createPayment.AssertExpectations(t)
	h.confirmPayment.AssertExpectations(t)
	h.sendNotification.AssertExpectations(t)
	h.getOrder.AssertExpectations(t)
	h.listAssignments.AssertExpectations(t)
	h.otp.AssertExpectations(t)
	h.push.AssertExpectations(t)
	h.devices.AssertExpectations(t)
}

// do sends a request as sub with role; an empty role sends no token.
func (h *harness) do(t *testing.T, method, path, body, sub, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(method, path, body)
	if role != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, sub, role, time.Hour))
	}
	return serve(h, req)
}

func token(t *testing.T, sub, role string, ttl time.Duration) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func testOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	item, err := order.NewItem("sku-a", "Cetirizine", kernel.MustMoney("120"), 2, false)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), "customer-1", []order.Item{item},
		"12 Park Street, Kolkata", method, nil, time.Now())
	require.NoError(t, err)
	return o
}

func dispatched(t *testing.T, o *order.Order, agent kernel.UserID) *order.Order {
	t.Helper()
	now := time.Now()
	require.NoError(t, o.Approve(now))
	require.NoError(t, o.AssignDelivery(order.DeliveryAssignment{
		OrderID:          o.ID(),
		DeliveryPersonID: agent,
		AssignedAt:       now,
	}, now))
	require.NoError(t, o.Dispatch("042917", now))
	return o
}

func newRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func serve(h *harness, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}
