package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockOrderUoW struct {
	mock.Mock
}

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct {
	mock.Mock
}

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyTransition(
	ctx context.Context,
	o *order.Order,
	event notifications.Event,
) notifications.Report {
	args := m.Called(ctx, o, event)
	return args.Get(0).(notifications.Report)
}

func (m *MockNotifier) SendOrderConfirmation(ctx context.Context, o *order.Order) notifications.Report {
	args := m.Called(ctx, o)
	return args.Get(0).(notifications.Report)
}

func (m *MockNotifier) SendOrderStatusUpdate(ctx context.Context, o *order.Order) notifications.Report {
	args := m.Called(ctx, o)
	return args.Get(0).(notifications.Report)
}

func (m *MockNotifier) SendDeliveryAssignment(ctx context.Context, o *order.Order) notifications.Report {
	args := m.Called(ctx, o)
	return args.Get(0).(notifications.Report)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event ports.OrderChanged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockOtpLimiter struct {
	mock.Mock
}

func (m *MockOtpLimiter) Exceeded(ctx context.Context, orderID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOtpLimiter) RecordFailure(ctx context.Context, orderID kernel.UUID) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOtpLimiter) Reset(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockOtpIssuer struct {
	mock.Mock
}

func (m *MockOtpIssuer) Generate(length int) (string, error) {
	args := m.Called(length)
	return args.String(0), args.Error(1)
}

type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) CreateGatewayOrder(
	ctx context.Context,
	amountMinorUnits int64,
	currency, receiptID string,
) (ports.GatewayOrder, error) {
	args := m.Called(ctx, amountMinorUnits, currency, receiptID)
	return args.Get(0).(ports.GatewayOrder), args.Error(1)
}

func (m *MockPaymentProcessor) VerifyPayment(gatewayOrderID, gatewayPaymentID, signature string) payments.Verification {
	args := m.Called(gatewayOrderID, gatewayPaymentID, signature)
	return args.Get(0).(payments.Verification)
}

const (
	customerID kernel.UserID = "customer-1"
	agentID    kernel.UserID = "agent-7"
	otherAgent kernel.UserID = "agent-9"
)

const deliveryOtp = "042917"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture bundles the mocks shared by handler tests.
type fixture struct {
	repo      *MockOrderRepository
	uow       *MockOrderUoW
	factory   *MockOrderUoWFactory
	notifier  *MockNotifier
	publisher *MockEventPublisher
	effects   *commands.Effects
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockOrderRepository),
		uow:       new(MockOrderUoW),
		factory:   new(MockOrderUoWFactory),
		notifier:  new(MockNotifier),
		publisher: new(MockEventPublisher),
	}
	f.effects = commands.NewEffects(f.notifier, f.publisher, nil, discardLogger())
	return f
}

// expectTransition sets up a successful load, update and commit of o.
func (f *fixture) expectTransition(ctx context.Context, o *order.Order) {
	f.factory.On("Create").Return(f.uow).Once()
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.repo.On("Update", ctx, o).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)
}

// expectReadOnly sets up a load of o that ends in rollback only.
func (f *fixture) expectReadOnly(ctx context.Context, o *order.Order) {
	f.factory.On("Create").Return(f.uow).Once()
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)
}

func (f *fixture) expectEffects(ctx context.Context, o *order.Order, event notifications.Event) {
	f.notifier.On("NotifyTransition", ctx, o, event).Return(notifications.Report{}).Once()
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(e ports.OrderChanged) bool {
		return e.EventType == string(event) && e.OrderID == o.ID()
	})).Return(nil).Once()
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.factory.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func testItems(t *testing.T) []order.Item {
	t.Helper()
	item, err := order.NewItem("sku-1", "Paracetamol 500mg", kernel.MustMoney("120"), 2, false)
	require.NoError(t, err)
	return []order.Item{item}
}

func pendingOrder(t *testing.T, method order.PaymentMethod, createdAt time.Time) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), customerID, testItems(t), "12 Park Street", method, nil, createdAt)
	require.NoError(t, err)
	return o
}

func paidOrder(t *testing.T) *order.Order {
	t.Helper()
	o := pendingOrder(t, order.Online, time.Now())
	require.NoError(t, o.AttachGatewayOrder("order_gw1", o.Amounts().Total().MinorUnits(), time.Now()))
	applied, err := o.CompletePayment("order_gw1", "pay_1", "sig", time.Now())
	require.NoError(t, err)
	require.True(t, applied)
	return o
}

func approvedOrder(t *testing.T) *order.Order {
	t.Helper()
	o := pendingOrder(t, order.CashOnDelivery, time.Now())
	require.NoError(t, o.Approve(time.Now()))
	return o
}

func assignedOrder(t *testing.T, agent kernel.UserID) *order.Order {
	t.Helper()
	o := approvedOrder(t)
	require.NoError(t, o.AssignDelivery(order.DeliveryAssignment{
		OrderID:          o.ID(),
		DeliveryPersonID: agent,
		AssignedAt:       time.Now(),
	}, time.Now()))
	return o
}

func dispatchedOrder(t *testing.T, agent kernel.UserID) *order.Order {
	t.Helper()
	o := assignedOrder(t, agent)
	require.NoError(t, o.Dispatch(deliveryOtp, time.Now()))
	return o
}
