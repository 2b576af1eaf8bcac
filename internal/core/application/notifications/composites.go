package notifications

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// Event names an order transition that produces a notification.
type Event string

const (
	EventCreated          Event = "order.created"
	EventPaymentCompleted Event = "order.payment_completed"
	EventApproved         Event = "order.approved"
	EventAssigned         Event = "order.assigned"
	EventOutForDelivery   Event = "order.out_for_delivery"
	EventDelivered        Event = "order.delivered"
	EventCancelled        Event = "order.cancelled"
)

// NotifyTransition selects the one notification belonging to event and sends it.
func (d *Dispatcher) NotifyTransition(ctx context.Context, o *order.Order, event Event) Report {
	switch event {
	case EventCreated:
		return d.SendOrderConfirmation(ctx, o)
	case EventAssigned:
		return d.SendDeliveryAssignment(ctx, o)
	case EventOutForDelivery:
		return d.SendOtpAdvisory(ctx, o)
	default:
		return d.SendOrderStatusUpdate(ctx, o)
	}
}

// SendOrderConfirmation tells the customer the order was placed.
func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, o *order.Order) Report {
	return d.sendComposite(ctx, o, o.CustomerID(), TemplateOrderConfirmation,
		fmt.Sprintf("Order confirmed #%s", shortID(o)),
		ports.PushMessage{
			Title: "Order placed",
			Body:  fmt.Sprintf("Your order of %s has been placed.", o.Amounts().Total()),
		})
}

// SendOrderStatusUpdate tells the customer the order's current status.
func (d *Dispatcher) SendOrderStatusUpdate(ctx context.Context, o *order.Order) Report {
	label := StatusLabel(o.Status())
	body := fmt.Sprintf("Your order is now %s.", label)
	if o.Status() == order.Pending && o.PaymentStatus() == order.PaymentCompleted {
		body = "We received your payment."
	}
	return d.sendComposite(ctx, o, o.CustomerID(), TemplateOrderStatusUpdate,
		fmt.Sprintf("Order #%s: %s", shortID(o), label),
		ports.PushMessage{Title: "Order update", Body: body})
}

// SendDeliveryAssignment tells the assigned agent about the new delivery.
func (d *Dispatcher) SendDeliveryAssignment(ctx context.Context, o *order.Order) Report {
	agent := o.DeliveryPerson()
	if agent == nil {
		attempt := d.record(ctx, ChannelEmail, "", TemplateDeliveryAssignment, false, "order has no delivery person")
		return Report{Email: &EmailResult{Error: attempt.ErrorDetail}, Attempts: []NotificationAttempt{attempt}}
	}
	return d.sendComposite(ctx, o, *agent, TemplateDeliveryAssignment,
		fmt.Sprintf("New delivery #%s", shortID(o)),
		ports.PushMessage{
			Title: "New delivery assigned",
			Body:  fmt.Sprintf("Deliver to %s", o.ShippingAddress()),
		})
}

// SendOtpAdvisory gives the customer the delivery code once the order is on its way.
func (d *Dispatcher) SendOtpAdvisory(ctx context.Context, o *order.Order) Report {
	return d.sendComposite(ctx, o, o.CustomerID(), TemplateOtpAdvisory,
		fmt.Sprintf("Order #%s is out for delivery", shortID(o)),
		ports.PushMessage{
			Title: "Out for delivery",
			Body:  fmt.Sprintf("Your delivery code is %s. Share it only on receipt.", o.DeliveryOtp()),
		})
}

func (d *Dispatcher) sendComposite(
	ctx context.Context,
	o *order.Order,
	recipientID kernel.UserID,
	tpl TemplateType,
	subject string,
	push ports.PushMessage,
) Report {
	var report Report

	email := d.composeEmail(ctx, o, recipientID, tpl, subject)
	report.Email = &email.result
	report.Attempts = append(report.Attempts, email.attempt)

	push.Data = map[string]string{
		"orderId": o.ID().String(),
		"status":  o.Status().String(),
		"type":    string(tpl),
	}
	pushRes, attempt := d.sendPush(ctx, tpl, recipientID, push)
	report.Push = &pushRes
	report.Attempts = append(report.Attempts, attempt)

	return report
}

type emailOutcome struct {
	result  EmailResult
	attempt NotificationAttempt
}

func (d *Dispatcher) composeEmail(
	ctx context.Context,
	o *order.Order,
	recipientID kernel.UserID,
	tpl TemplateType,
	subject string,
) emailOutcome {
	fail := func(target, detail string) emailOutcome {
		return emailOutcome{
			result:  EmailResult{Error: detail},
			attempt: d.record(ctx, ChannelEmail, target, tpl, false, detail),
		}
	}

	recipient, err := d.users.Get(ctx, recipientID)
	if err != nil {
		return fail(recipientID.String(), fmt.Sprintf("resolve recipient: %v", err))
	}

	view := newOrderView(o, subject, recipient.Name)
	if tpl == TemplateOtpAdvisory {
		view.Otp = o.DeliveryOtp()
	}
	body, err := d.templates.render(tpl, view)
	if err != nil {
		return fail(recipient.Email, err.Error())
	}

	res, attempt := d.sendEmail(ctx, tpl, recipient.Email, subject, body)
	return emailOutcome{result: res, attempt: attempt}
}

func shortID(o *order.Order) string {
	id := o.ID().String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
