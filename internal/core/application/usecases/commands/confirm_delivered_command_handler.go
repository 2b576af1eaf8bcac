package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/metrics"
)

// ConfirmDeliveredCommandHandler completes a delivery when the presented code
// matches. Failed attempts are counted per order by the limiter; once the
// limit is reached further attempts are refused without reading the order.
type ConfirmDeliveredCommandHandler struct {
	uowFactory OrderUoWFactory
	limiter    ports.OtpAttemptLimiter
	effects    *Effects
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewConfirmDeliveredCommandHandler(
	uowFactory OrderUoWFactory,
	limiter ports.OtpAttemptLimiter,
	effects *Effects,
	m *metrics.Metrics,
	logger *slog.Logger,
) ConfirmDeliveredCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return ConfirmDeliveredCommandHandler{
		uowFactory: uowFactory,
		limiter:    limiter,
		effects:    effects,
		metrics:    m,
		logger:     logger.With("component", "confirm-delivered"),
	}
}

func (h ConfirmDeliveredCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveredCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	exceeded, err := h.limiter.Exceeded(ctx, cmd.OrderID())
	if err != nil {
		return TransitionResult{}, err
	}
	if exceeded {
		return TransitionResult{}, ErrOtpAttemptsExceeded
	}

	o, _, err := runTransition(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order) (bool, error) {
		if agent := cmd.Agent(); agent != nil && !o.IsAssignedTo(*agent) {
			return false, ErrNotPermitted
		}
		return changedOnly(o.ConfirmDelivery(cmd.Otp(), time.Now()))
	})
	if errors.Is(err, order.ErrOtpMismatch) {
		h.metrics.OtpFailure()
		attempts, limErr := h.limiter.RecordFailure(ctx, cmd.OrderID())
		if limErr != nil {
			h.logger.WarnContext(ctx, "failed to record otp attempt", "order_id", cmd.OrderID().String(), "error", limErr)
		}
		h.logger.InfoContext(ctx, "delivery otp mismatch", "order_id", cmd.OrderID().String(), "attempts", attempts)
		return TransitionResult{}, err
	}
	if err != nil {
		return TransitionResult{}, err
	}

	if err = h.limiter.Reset(ctx, cmd.OrderID()); err != nil {
		h.logger.WarnContext(ctx, "failed to reset otp attempts", "order_id", cmd.OrderID().String(), "error", err)
	}

	return TransitionResult{
		Order:         o,
		Changed:       true,
		Notifications: h.effects.AfterCommit(ctx, o, notifications.EventDelivered),
	}, nil
}
