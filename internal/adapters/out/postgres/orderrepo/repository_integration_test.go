package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite runs the repository against a real
// PostgreSQL container.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderItemDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_items, orders").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ThenGet_RoundTripsAggregate() {
	ctx := context.Background()
	location, err := kernel.NewGeoPoint(12.9716, 77.5946, 15, time.Now())
	suite.Require().NoError(err)
	testOrder := suite.createTestOrder(order.Online, &location)

	suite.Require().NoError(suite.repository.Add(ctx, testOrder))
	got, err := suite.repository.Get(ctx, testOrder.ID())

	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), got.ID())
	suite.Equal(testOrder.CustomerID(), got.CustomerID())
	suite.Equal(order.Pending, got.Status())
	suite.Equal(order.Online, got.PaymentMethod())
	suite.Equal(int64(1), got.Version())
	suite.Require().Len(got.Items(), 2)
	suite.Equal("sku-a", got.Items()[0].ProductID())
	suite.Equal("sku-b", got.Items()[1].ProductID())
	suite.True(got.Items()[1].RequiresPrescription())
	suite.Equal(testOrder.Amounts().Total().String(), got.Amounts().Total().String())
	suite.Require().NotNil(got.CustomerLocation())
	suite.InDelta(12.9716, got.CustomerLocation().Latitude(), 1e-9)
	suite.Nil(got.PaymentDetails())
	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", testOrder.ID(), testOrder)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_FullLifecycle_PersistsEveryStage() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(order.Online, nil)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))
	now := time.Now()

	total := testOrder.Amounts().Total().MinorUnits()
	suite.Require().NoError(testOrder.AttachGatewayOrder("order_gw1", total, now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	applied, err := testOrder.CompletePayment("order_gw1", "pay_1", "sig", now)
	suite.Require().NoError(err)
	suite.Require().True(applied)
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	suite.Require().NoError(testOrder.Approve(now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	expected := now.Add(time.Hour)
	suite.Require().NoError(testOrder.AssignDelivery(order.DeliveryAssignment{
		OrderID:          testOrder.ID(),
		DeliveryPersonID: "agent-7",
		AssignedAt:       now,
		ExpectedAt:       &expected,
	}, now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	suite.Require().NoError(testOrder.Dispatch("004211", now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	got, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.OutForDelivery, got.Status())
	suite.Equal(order.PaymentCompleted, got.PaymentStatus())
	suite.Equal("004211", got.DeliveryOtp())
	suite.Equal(int64(6), got.Version())
	suite.Equal(testOrder.Version(), got.Version())
	suite.Require().NotNil(got.DeliveryPerson())
	suite.Equal(kernel.UserID("agent-7"), *got.DeliveryPerson())
	suite.Require().NotNil(got.PaymentDetails())
	suite.Equal("pay_1", got.PaymentDetails().GatewayPaymentID)
	suite.Equal(total, got.PaymentDetails().CapturedAmount)
	suite.True(got.PaymentDetails().IsVerified())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_CancelAfterAssignment_ClearsAssignee() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	testOrder := suite.createTestOrder(order.CashOnDelivery, nil)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	suite.Require().NoError(testOrder.Approve(now))
	expected := now.Add(time.Hour)
	suite.Require().NoError(testOrder.AssignDelivery(order.DeliveryAssignment{
		OrderID:          testOrder.ID(),
		DeliveryPersonID: "agent-7",
		AssignedAt:       now,
		ExpectedAt:       &expected,
	}, now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	suite.Require().NoError(testOrder.Cancel("customer unreachable", now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	got, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Cancelled, got.Status())
	suite.Nil(got.DeliveryPerson())
	suite.Nil(got.AssignedAt())
	suite.Nil(got.ExpectedDeliveryAt())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReturnsConflict() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(order.CashOnDelivery, nil)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	first, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(first.Approve(time.Now()))
	suite.Require().NoError(suite.repository.Update(ctx, first))

	suite.Require().NoError(second.Cancel("duplicate", time.Now()))
	err = suite.repository.Update(ctx, second)

	suite.Require().ErrorIs(err, errs.ErrVersionIsInvalid)
	suite.Equal(int64(1), second.Version())
	stored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Approved, stored.Status())
	suite.Equal(int64(2), stored.Version())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFound() {
	testOrder := suite.createTestOrder(order.CashOnDelivery, nil)

	err := suite.repository.Update(context.Background(), testOrder)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ZeroValueOrder_Fails() {
	err := suite.repository.Add(context.Background(), &order.Order{})

	suite.Require().Error(err)
	suite.assertOrderCount(0)
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(
	method order.PaymentMethod,
	location *kernel.GeoPoint,
) *order.Order {
	a, err := order.NewItem("sku-a", "Cetirizine", kernel.MustMoney("35.50"), 2, false)
	suite.Require().NoError(err)
	b, err := order.NewItem("sku-b", "Amoxicillin", kernel.MustMoney("120"), 1, true)
	suite.Require().NoError(err)
	testOrder, err := order.NewOrder(kernel.NewUUID(), "customer-1", []order.Item{a, b},
		"12 Park Street, Kolkata", method, location, time.Now())
	suite.Require().NoError(err)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
