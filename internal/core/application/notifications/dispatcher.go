// Package notifications sends templated email and push messages about order
// transitions. The Dispatcher is stateless between calls: every send is a
// single bounded attempt whose outcome is reported, never raised.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
)

// DefaultSendTimeout bounds a single provider call.
const DefaultSendTimeout = 10 * time.Second

// ErrNoDevices is reported when a user has no registered push tokens.
var ErrNoDevices = errors.New("NoDevices")

// Channel is the delivery medium of a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

// TemplateType names the message a notification was rendered from.
type TemplateType string

const (
	TemplateRaw                TemplateType = "raw"
	TemplateOrderConfirmation  TemplateType = "order_confirmation"
	TemplateOrderStatusUpdate  TemplateType = "order_status_update"
	TemplateDeliveryAssignment TemplateType = "delivery_assignment"
	TemplateOtpAdvisory        TemplateType = "otp_advisory"
)

// NotificationAttempt records one send on one channel.
type NotificationAttempt struct {
	Channel      Channel      `json:"channel"`
	Target       string       `json:"target"`
	TemplateType TemplateType `json:"templateType"`
	Success      bool         `json:"success"`
	ErrorDetail  string       `json:"errorDetail,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// EmailResult is the outcome of SendEmail.
type EmailResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PushResult is the outcome of SendPush. SuccessCount + FailureCount equals
// the number of tokens addressed.
type PushResult struct {
	Success      bool   `json:"success"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
	Error        string `json:"error,omitempty"`
}

// Report is what a composite send returns to the caller for observability.
type Report struct {
	Email    *EmailResult          `json:"email,omitempty"`
	Push     *PushResult           `json:"push,omitempty"`
	Attempts []NotificationAttempt `json:"attempts"`
}

// Dispatcher delivers notifications through injected providers.
type Dispatcher struct {
	email     ports.EmailSender
	push      ports.PushSender
	tokens    ports.DeviceTokenStore
	users     ports.UserDirectory
	templates *templates
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher wires the providers. timeout <= 0 selects DefaultSendTimeout.
func NewDispatcher(
	email ports.EmailSender,
	push ports.PushSender,
	tokens ports.DeviceTokenStore,
	users ports.UserDirectory,
	timeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Dispatcher, error) {
	var errList []error
	if email == nil {
		errList = append(errList, errs.NewValueIsRequiredError("email sender"))
	}
	if push == nil {
		errList = append(errList, errs.NewValueIsRequiredError("push sender"))
	}
	if tokens == nil {
		errList = append(errList, errs.NewValueIsRequiredError("device token store"))
	}
	if users == nil {
		errList = append(errList, errs.NewValueIsRequiredError("user directory"))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		email:     email,
		push:      push,
		tokens:    tokens,
		users:     users,
		templates: tpl,
		timeout:   timeout,
		metrics:   m,
		logger:    logger.With("component", "notifications"),
		now:       time.Now,
	}, nil
}

// SendEmail sends one HTML email.
func (d *Dispatcher) SendEmail(ctx context.Context, to, subject, htmlBody string) EmailResult {
	res, _ := d.sendEmail(ctx, TemplateRaw, to, subject, htmlBody)
	return res
}

// SendPush fans msg out to every device registered for userID.
func (d *Dispatcher) SendPush(ctx context.Context, userID kernel.UserID, msg ports.PushMessage) PushResult {
	res, _ := d.sendPush(ctx, TemplateRaw, userID, msg)
	return res
}

func (d *Dispatcher) sendEmail(
	ctx context.Context,
	tpl TemplateType,
	to, subject, htmlBody string,
) (EmailResult, NotificationAttempt) {
	var res EmailResult
	switch {
	case strings.TrimSpace(to) == "":
		res.Error = "recipient address is empty"
	case strings.TrimSpace(subject) == "":
		res.Error = "subject is empty"
	default:
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		id, err := d.email.Send(sendCtx, ports.EmailMessage{To: to, Subject: subject, HTMLBody: htmlBody})
		cancel()
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			res.MessageID = id
		}
	}

	return res, d.record(ctx, ChannelEmail, to, tpl, res.Success, res.Error)
}

func (d *Dispatcher) sendPush(
	ctx context.Context,
	tpl TemplateType,
	userID kernel.UserID,
	msg ports.PushMessage,
) (PushResult, NotificationAttempt) {
	res := d.fanOut(ctx, userID, msg)
	return res, d.record(ctx, ChannelPush, userID.String(), tpl, res.Success, res.Error)
}

func (d *Dispatcher) fanOut(ctx context.Context, userID kernel.UserID, msg ports.PushMessage) PushResult {
	if err := userID.Validate(); err != nil {
		return PushResult{Error: err.Error()}
	}

	tokens, err := d.tokens.Tokens(ctx, userID)
	if err != nil {
		return PushResult{Error: fmt.Sprintf("resolve device tokens: %v", err)}
	}
	if len(tokens) == 0 {
		return PushResult{Error: ErrNoDevices.Error()}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	results, err := d.push.SendMulticast(sendCtx, tokens, msg)
	cancel()
	if err != nil {
		return PushResult{FailureCount: len(tokens), Error: err.Error()}
	}

	var (
		succeeded int
		stale     []string
		firstErr  error
	)
	for _, r := range results {
		switch {
		case r.Success:
			succeeded++
		case r.Unregistered:
			stale = append(stale, r.Token)
		}
		if !r.Success && firstErr == nil && r.Err != nil {
			firstErr = r.Err
		}
	}
	if succeeded > len(tokens) {
		succeeded = len(tokens)
	}

	if len(stale) > 0 {
		if err = d.tokens.Remove(ctx, userID, stale...); err != nil {
			d.logger.WarnContext(ctx, "failed to prune unregistered tokens", "user_id", userID, "error", err)
		} else {
			d.logger.InfoContext(ctx, "pruned unregistered tokens", "user_id", userID, "count", len(stale))
		}
	}

	res := PushResult{
		Success:      succeeded > 0,
		SuccessCount: succeeded,
		FailureCount: len(tokens) - succeeded,
	}
	if !res.Success && firstErr != nil {
		res.Error = firstErr.Error()
	}
	return res
}

func (d *Dispatcher) record(
	ctx context.Context,
	channel Channel,
	target string,
	tpl TemplateType,
	success bool,
	detail string,
) NotificationAttempt {
	attempt := NotificationAttempt{
		Channel:      channel,
		Target:       target,
		TemplateType: tpl,
		Success:      success,
		ErrorDetail:  detail,
		Timestamp:    d.now().UTC(),
	}
	d.metrics.Notification(string(channel), string(tpl), success)
	if success {
		d.logger.InfoContext(ctx, "notification sent", "channel", channel, "target", target, "template", tpl)
	} else {
		d.logger.WarnContext(ctx, "notification failed",
			"channel", channel, "target", target, "template", tpl, "error", detail)
	}
	return attempt
}
