package kernel

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

const maxUserIDLength = 128

// UserID is an opaque identifier issued by the identity provider. Customers,
// admins and delivery agents share the same identifier space.
type UserID string

// NewUserID trims s and rejects empty or oversized identifiers.
func NewUserID(s string) (UserID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", errs.NewValueIsRequiredError("user id")
	}
	if len(trimmed) > maxUserIDLength {
		return "", errs.NewValueIsInvalidErrorWithCause("user id",
			fmt.Errorf("length %d exceeds %d", len(trimmed), maxUserIDLength))
	}
	return UserID(trimmed), nil
}

func (u UserID) String() string {
	return string(u)
}

func (u UserID) Validate() error {
	if u == "" {
		return errs.NewValueIsRequiredError("user id")
	}
	return nil
}
