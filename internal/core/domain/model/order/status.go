package order

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Approved ──> OutForDelivery ──> Delivered
//	   │           │
//	   └───────────┴──> Cancelled
//
// Delivered and Cancelled are terminal.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending is the status of a freshly checked-out order.
	Pending

	// Approved orders passed admin review (and payment, for online orders)
	// and may be assigned to a delivery agent.
	Approved

	// OutForDelivery orders carry an assignee and a delivery OTP.
	OutForDelivery

	// Delivered is the terminal success state.
	Delivered

	// Cancelled is the terminal failure state.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Approved:       "approved",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
	}
}

// ParseStatus maps an external status string onto the closed Status enum.
// Case, surrounding whitespace, spaces and hyphens are normalized, so
// "Out for Delivery" and "out-for-delivery" both yield OutForDelivery.
// Anything else is rejected rather than defaulted.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for status, str := range getStatusStrings() {
		if status != Unknown && str == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values, e.g. ones read from storage.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// ValidateAssign checks that a delivery agent may be (re)assigned in s.
// Reassignment is allowed until the order leaves Approved.
func (s Status) ValidateAssign() error {
	if s != Approved {
		return newInvalidTransition(s, "assign delivery")
	}
	return nil
}

// ValidateCanHaveDeliveryPerson checks status/assignee consistency of restored orders.
//
// Business Rules:
//   - OutForDelivery and Delivered orders must have an assignee
//   - Pending and Cancelled orders must not have one
//   - Approved orders may carry a pre-assignment
func (s Status) ValidateCanHaveDeliveryPerson(hasDeliveryPerson bool) error {
	if !hasDeliveryPerson && (s == OutForDelivery || s == Delivered) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no delivery person", s),
		)
	}
	if hasDeliveryPerson && (s == Pending || s == Cancelled) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a delivery person", s),
		)
	}
	return nil
}

// Approve transitions Pending -> Approved.
func (s Status) Approve() (Status, error) {
	if s != Pending {
		return Unknown, newInvalidTransition(s, "approve")
	}
	return Approved, nil
}

// Dispatch transitions Approved -> OutForDelivery.
func (s Status) Dispatch() (Status, error) {
	if s != Approved {
		return Unknown, newInvalidTransition(s, "dispatch")
	}
	return OutForDelivery, nil
}

// Deliver transitions OutForDelivery -> Delivered.
func (s Status) Deliver() (Status, error) {
	if s != OutForDelivery {
		return Unknown, newInvalidTransition(s, "deliver")
	}
	return Delivered, nil
}

// Cancel transitions Pending or Approved -> Cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Approved {
		return Unknown, newInvalidTransition(s, "cancel")
	}
	return Cancelled, nil
}
