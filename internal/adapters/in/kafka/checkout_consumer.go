// Package kafka turns checkout.confirmed events into orders.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const DefaultCheckoutTopic = "checkout.confirmed"

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type orderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.TransitionResult, error)
}

// CheckoutConfirmed is the checkout.confirmed message body.
type CheckoutConfirmed struct {
	CustomerID       string         `json:"customer_id"`
	Items            []CheckoutItem `json:"items"`
	ShippingAddress  string         `json:"shipping_address"`
	PaymentMethod    string         `json:"payment_method"`
	CustomerLocation *Location      `json:"customer_location,omitempty"`
}

type CheckoutItem struct {
	ProductID            string          `json:"product_id"`
	Name                 string          `json:"name"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	Quantity             int             `json:"quantity"`
	RequiresPrescription bool            `json:"requires_prescription"`
}

type Location struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	CapturedAt time.Time `json:"captured_at"`
}

const (
	defaultRetryDelay = 200 * time.Millisecond
	defaultMaxDelay   = 30 * time.Second
)

// CheckoutConsumer processes messages one at a time. Offsets are committed
// after an order was created and for messages that can never succeed.
// A transient failure is retried on the same message with exponential
// backoff; the consumer never fetches past a message it could not process,
// because committing a later offset would skip it for the whole group.
type CheckoutConsumer struct {
	r          messageReader
	creator    orderCreator
	logger     *slog.Logger
	retryDelay time.Duration
	maxDelay   time.Duration
}

func NewCheckoutConsumer(brokers []string, groupID, topic string, creator orderCreator, logger *slog.Logger) *CheckoutConsumer {
	if topic == "" {
		topic = DefaultCheckoutTopic
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return newCheckoutConsumer(r, creator, logger)
}

func newCheckoutConsumer(r messageReader, creator orderCreator, logger *slog.Logger) *CheckoutConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutConsumer{
		r:          r,
		creator:    creator,
		logger:     logger.With("component", "checkout-consumer"),
		retryDelay: defaultRetryDelay,
		maxDelay:   defaultMaxDelay,
	}
}

// Run blocks until ctx is cancelled or the reader fails.
func (c *CheckoutConsumer) Run(ctx context.Context) error {
	defer func() {
		_ = c.r.Close()
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch checkout message: %w", err)
		}

		if !c.process(ctx, m) {
			return nil
		}

		if err = c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.ErrorContext(ctx, "failed to commit checkout message", "offset", m.Offset, "error", err)
		}
	}
}

// process handles m until it succeeds or fails permanently, and reports
// whether m may be committed. It returns false only when ctx ends first.
func (c *CheckoutConsumer) process(ctx context.Context, m kafka.Message) bool {
	delay := c.retryDelay
	for {
		err := c.handle(ctx, m)
		if err == nil {
			return true
		}
		if isPermanent(err) {
			c.logger.WarnContext(ctx, "skipping invalid checkout message",
				"partition", m.Partition, "offset", m.Offset, "error", err)
			return true
		}

		c.logger.ErrorContext(ctx, "failed to create order from checkout",
			"partition", m.Partition, "offset", m.Offset, "retry_in", delay, "error", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay = min(delay*2, c.maxDelay)
	}
}

func (c *CheckoutConsumer) handle(ctx context.Context, m kafka.Message) error {
	var msg CheckoutConfirmed
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("checkout message", err)
	}

	cmd, err := msg.toCommand()
	if err != nil {
		return err
	}

	res, err := c.creator.Handle(ctx, cmd)
	if err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "order created from checkout",
		"order_id", res.Order.ID().String(), "customer_id", msg.CustomerID)
	return nil
}

func (msg CheckoutConfirmed) toCommand() (commands.CreateOrderCommand, error) {
	customerID, err := kernel.NewUserID(msg.CustomerID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	method, err := order.ParsePaymentMethod(msg.PaymentMethod)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	items := make([]order.Item, 0, len(msg.Items))
	for _, it := range msg.Items {
		price, err := kernel.NewMoney(it.UnitPrice)
		if err != nil {
			return commands.CreateOrderCommand{}, err
		}
		item, err := order.NewItem(it.ProductID, it.Name, price, it.Quantity, it.RequiresPrescription)
		if err != nil {
			return commands.CreateOrderCommand{}, err
		}
		items = append(items, item)
	}

	var location *kernel.GeoPoint
	if l := msg.CustomerLocation; l != nil {
		point, err := kernel.NewGeoPoint(l.Latitude, l.Longitude, l.Accuracy, l.CapturedAt)
		if err != nil {
			return commands.CreateOrderCommand{}, err
		}
		location = &point
	}

	return commands.NewCreateOrderCommand(kernel.NewUUID(), customerID, items, msg.ShippingAddress, method, location)
}

func isPermanent(err error) bool {
	return errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsOutOfRange) ||
		errors.Is(err, order.ErrEmptyOrder)
}
