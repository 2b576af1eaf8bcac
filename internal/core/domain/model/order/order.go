package order

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Order is the aggregate root of the fulfillment core. It owns the status,
// the price breakdown, and the payment and delivery sub-state, and it is the
// only writer of its own fields.
//
// Order follows these invariants:
//   - Items are non-empty and immutable after creation
//   - Amounts.Total equals Subtotal + Tax + DeliveryFee
//   - deliveryOtp is set iff status is OutForDelivery or Delivered, and never changes
//   - PaymentCompleted is only reachable through CompletePayment
//   - OutForDelivery and Delivered orders have a delivery person
type Order struct {
	id               kernel.UUID
	customerID       kernel.UserID
	status           Status
	items            []Item
	amounts          Amounts
	paymentMethod    PaymentMethod
	paymentStatus    PaymentStatus
	paymentDetails   *PaymentDetails
	shippingAddress  string
	customerLocation *kernel.GeoPoint

	deliveryPersonID   *kernel.UserID
	assignedAt         *time.Time
	expectedDeliveryAt *time.Time
	deliveryOtp        string

	cancelReason string
	createdAt    time.Time
	updatedAt    time.Time

	// version is the optimistic concurrency counter compared on every update.
	version int64

	isConstructed bool
}

// NewOrder creates a pending order and computes its amounts from items.
//
// Example:
//
//	item, _ := order.NewItem("sku-1", "Paracetamol", kernel.MustMoney("300"), 1, false)
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, []order.Item{item},
//	    "221B Baker St", order.CashOnDelivery, nil, time.Now())
func NewOrder(
	id kernel.UUID,
	customerID kernel.UserID,
	items []Item,
	shippingAddress string,
	paymentMethod PaymentMethod,
	customerLocation *kernel.GeoPoint,
	now time.Time,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	o := &Order{
		status:        Pending,
		paymentStatus: PaymentPending,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setItems(items),
		o.setShippingAddress(shippingAddress),
		o.setPaymentMethod(paymentMethod),
		o.setCustomerLocation(customerLocation),
	); err != nil {
		return nil, err
	}
	o.amounts = CalculateAmounts(o.items)

	return o, nil
}

// RestoreParams carries a persisted order snapshot.
type RestoreParams struct {
	ID                 kernel.UUID
	CustomerID         kernel.UserID
	Status             Status
	Items              []Item
	Amounts            Amounts
	PaymentMethod      PaymentMethod
	PaymentStatus      PaymentStatus
	PaymentDetails     *PaymentDetails
	ShippingAddress    string
	CustomerLocation   *kernel.GeoPoint
	DeliveryPersonID   *kernel.UserID
	AssignedAt         *time.Time
	ExpectedDeliveryAt *time.Time
	DeliveryOtp        string
	CancelReason       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
}

// RestoreOrder rehydrates an order from storage and rejects snapshots that
// break the aggregate invariants.
func RestoreOrder(p RestoreParams) (*Order, error) {
	o := &Order{
		status:             p.Status,
		amounts:            p.Amounts,
		paymentStatus:      p.PaymentStatus,
		paymentDetails:     p.PaymentDetails,
		deliveryPersonID:   p.DeliveryPersonID,
		assignedAt:         p.AssignedAt,
		expectedDeliveryAt: p.ExpectedDeliveryAt,
		deliveryOtp:        p.DeliveryOtp,
		cancelReason:       p.CancelReason,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
		version:            p.Version,
		isConstructed:      true,
	}

	var errList []error
	if len(p.Items) == 0 {
		errList = append(errList, ErrEmptyOrder)
	}
	errList = append(errList,
		o.setID(p.ID),
		o.setCustomerID(p.CustomerID),
		o.setItems(p.Items),
		o.setShippingAddress(p.ShippingAddress),
		o.setPaymentMethod(p.PaymentMethod),
		o.setCustomerLocation(p.CustomerLocation),
		p.Status.Validate(),
		p.PaymentStatus.Validate(),
		p.Status.ValidateCanHaveDeliveryPerson(p.DeliveryPersonID != nil),
		o.validateOtpPresence(),
		o.validatePaymentState(),
	)
	if p.Version < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("version", p.Version, 1, "unbounded"))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was built by NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UserID {
	return o.customerID
}

func (o *Order) Status() Status {
	return o.status
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Order) Amounts() Amounts {
	return o.amounts
}

func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// PaymentDetails returns a copy of the gateway details, or nil before a
// payment intent was created.
func (o *Order) PaymentDetails() *PaymentDetails {
	if o.paymentDetails == nil {
		return nil
	}
	d := *o.paymentDetails
	return &d
}

func (o *Order) ShippingAddress() string {
	return o.shippingAddress
}

func (o *Order) CustomerLocation() *kernel.GeoPoint {
	return o.customerLocation
}

// DeliveryPerson returns the assigned agent, or nil if unassigned.
func (o *Order) DeliveryPerson() *kernel.UserID {
	return o.deliveryPersonID
}

func (o *Order) AssignedAt() *time.Time {
	return o.assignedAt
}

func (o *Order) ExpectedDeliveryAt() *time.Time {
	return o.expectedDeliveryAt
}

// DeliveryOtp returns the proof-of-delivery code. It is empty before dispatch.
func (o *Order) DeliveryOtp() string {
	return o.deliveryOtp
}

func (o *Order) CancelReason() string {
	return o.cancelReason
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) Version() int64 {
	return o.version
}

// IsAssignedTo reports whether userID is the current delivery agent.
func (o *Order) IsAssignedTo(userID kernel.UserID) bool {
	return o.deliveryPersonID != nil && *o.deliveryPersonID == userID
}

// AdvanceVersion is called by the repository once a compare-and-swap update
// of this snapshot succeeded.
func (o *Order) AdvanceVersion() {
	o.version++
}

// Approve transitions Pending -> Approved. Prepaid orders additionally
// require a completed payment.
func (o *Order) Approve(now time.Time) error {
	newStatus, err := o.status.Approve()
	if err != nil {
		return err
	}
	if o.paymentMethod == Online && o.paymentStatus != PaymentCompleted {
		return &InvalidTransitionError{From: o.status, Action: "approve", Reason: "online payment not completed"}
	}

	o.status = newStatus
	o.touch(now)
	return nil
}

// AssignDelivery attaches (or replaces) the delivery agent of an approved order.
// The assignee is frozen once the order is out for delivery.
func (o *Order) AssignDelivery(assignment DeliveryAssignment, now time.Time) error {
	if err := assignment.Validate(); err != nil {
		return err
	}
	if !assignment.OrderID.IsEqual(o.id) {
		return errs.NewValueIsInvalidErrorWithCause("assignment",
			fmt.Errorf("assignment for %s applied to order %s", assignment.OrderID, o.id))
	}
	if err := o.status.ValidateAssign(); err != nil {
		return err
	}

	person := assignment.DeliveryPersonID
	assignedAt := assignment.AssignedAt.UTC()
	o.deliveryPersonID = &person
	o.assignedAt = &assignedAt
	o.expectedDeliveryAt = nil
	if assignment.ExpectedAt != nil {
		expected := assignment.ExpectedAt.UTC()
		o.expectedDeliveryAt = &expected
	}
	o.touch(now)
	return nil
}

// Dispatch transitions Approved -> OutForDelivery and stores the delivery
// code. The code is set exactly once per order.
func (o *Order) Dispatch(otp string, now time.Time) error {
	newStatus, err := o.status.Dispatch()
	if err != nil {
		return err
	}
	if o.deliveryPersonID == nil {
		return &InvalidTransitionError{From: o.status, Action: "dispatch", Reason: "no delivery person assigned"}
	}
	if o.deliveryOtp != "" {
		return &InvalidTransitionError{From: o.status, Action: "dispatch", Reason: "delivery otp already issued"}
	}
	if err := validateOtp(otp); err != nil {
		return err
	}

	o.status = newStatus
	o.deliveryOtp = otp
	o.touch(now)
	return nil
}

// ConfirmDelivery transitions OutForDelivery -> Delivered when presented
// matches the stored code. On mismatch the order is left untouched.
func (o *Order) ConfirmDelivery(presented string, now time.Time) error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(o.deliveryOtp)) != 1 {
		return ErrOtpMismatch
	}

	o.status = newStatus
	o.touch(now)
	return nil
}

// Cancel transitions Pending or Approved -> Cancelled. A pre-assigned
// delivery person is released. Captured online payments are not refunded here.
func (o *Order) Cancel(reason string, now time.Time) error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.deliveryPersonID = nil
	o.assignedAt = nil
	o.expectedDeliveryAt = nil
	o.cancelReason = strings.TrimSpace(reason)
	o.touch(now)
	return nil
}

// AttachGatewayOrder records a freshly created gateway payment intent.
// A later intent replaces an earlier one until the payment completes.
func (o *Order) AttachGatewayOrder(gatewayOrderID string, amountMinorUnits int64, now time.Time) error {
	if err := o.ValidatePaymentIntent(); err != nil {
		return err
	}
	if strings.TrimSpace(gatewayOrderID) == "" {
		return errs.NewValueIsRequiredError("gateway order id")
	}
	if amountMinorUnits != o.amounts.Total().MinorUnits() {
		return errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d does not match order total %d", amountMinorUnits, o.amounts.Total().MinorUnits()))
	}

	o.paymentDetails = &PaymentDetails{GatewayOrderID: gatewayOrderID, AmountMinorUnits: amountMinorUnits}
	o.touch(now)
	return nil
}

// ValidatePaymentIntent checks that a gateway payment intent may be created:
// the order is an unpaid, pending online order.
func (o *Order) ValidatePaymentIntent() error {
	if o.paymentMethod != Online {
		return ErrNotOnlinePayment
	}
	if o.paymentStatus == PaymentCompleted {
		return ErrPaymentAlreadyCompleted
	}
	if o.status != Pending {
		return &InvalidTransitionError{From: o.status, Action: "create payment"}
	}
	return nil
}

// CompletePayment applies a payment whose gateway signature the caller has
// already verified. Submitting the same (gatewayOrderID, gatewayPaymentID)
// pair again is a no-op and reports applied=false.
func (o *Order) CompletePayment(
	gatewayOrderID, gatewayPaymentID, signature string,
	verifiedAt time.Time,
) (applied bool, err error) {
	if o.paymentMethod != Online {
		return false, ErrNotOnlinePayment
	}
	if o.paymentDetails == nil || o.paymentDetails.GatewayOrderID != gatewayOrderID {
		return false, ErrGatewayOrderMismatch
	}
	if o.paymentStatus == PaymentCompleted {
		if o.paymentDetails.GatewayPaymentID == gatewayPaymentID {
			return false, nil
		}
		return false, ErrPaymentAlreadyCompleted
	}
	if o.status != Pending {
		return false, &InvalidTransitionError{From: o.status, Action: "complete payment"}
	}
	if strings.TrimSpace(gatewayPaymentID) == "" || strings.TrimSpace(signature) == "" {
		return false, errs.NewValueIsRequiredError("gateway payment id and signature")
	}

	at := verifiedAt.UTC()
	o.paymentDetails.GatewayPaymentID = gatewayPaymentID
	o.paymentDetails.Signature = signature
	o.paymentDetails.CapturedAmount = o.paymentDetails.AmountMinorUnits
	o.paymentDetails.VerifiedAt = &at
	o.paymentStatus = PaymentCompleted
	o.touch(verifiedAt)
	return true, nil
}

func (o *Order) touch(now time.Time) {
	o.updatedAt = now.UTC()
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UserID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer id", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setItems(items []Item) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setShippingAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errs.NewValueIsRequiredError("shipping address")
	}
	o.shippingAddress = address
	return nil
}

func (o *Order) setPaymentMethod(method PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	o.paymentMethod = method
	return nil
}

func (o *Order) setCustomerLocation(location *kernel.GeoPoint) error {
	if location == nil {
		o.customerLocation = nil
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	l := *location
	o.customerLocation = &l
	return nil
}

func (o *Order) validateOtpPresence() error {
	hasOtp := o.deliveryOtp != ""
	wantsOtp := o.status == OutForDelivery || o.status == Delivered
	if hasOtp != wantsOtp {
		return errs.NewValueIsInvalidErrorWithCause("delivery otp",
			fmt.Errorf("otp present=%t in status %s", hasOtp, o.status))
	}
	if hasOtp {
		return validateOtp(o.deliveryOtp)
	}
	return nil
}

func (o *Order) validatePaymentState() error {
	if o.paymentStatus != PaymentCompleted {
		return nil
	}
	if o.paymentMethod != Online || o.paymentDetails == nil || !o.paymentDetails.IsVerified() {
		return errs.NewValueIsInvalidErrorWithCause("payment status",
			errors.New("completed payment without verified gateway details"))
	}
	return nil
}

func validateOtp(otp string) error {
	if otp == "" {
		return errs.NewValueIsRequiredError("delivery otp")
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			return errs.NewValueIsInvalidErrorWithCause("delivery otp", errors.New("must contain only digits"))
		}
	}
	return nil
}
