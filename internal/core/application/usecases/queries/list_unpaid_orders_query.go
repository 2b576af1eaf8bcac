package queries

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const maxUnpaidBatch = 1000

var ErrListUnpaidOrdersQueryIsNotConstructed = errors.New(
	"ListUnpaidOrdersQuery must be created via NewListUnpaidOrdersQuery constructor",
)

// ListUnpaidOrdersQuery finds pending online orders without a completed
// payment that were created before cutoff, oldest first.
type ListUnpaidOrdersQuery struct { //nolint:recvcheck //using for validation
	cutoff time.Time
	limit  int
	guard  guard.ConstructorGuard
}

func NewListUnpaidOrdersQuery(cutoff time.Time, limit int) (ListUnpaidOrdersQuery, error) {
	var errList []error
	if cutoff.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("cutoff"))
	}
	if limit < 1 || limit > maxUnpaidBatch {
		errList = append(errList, errs.NewValueIsOutOfRangeError("limit", limit, 1, maxUnpaidBatch))
	}
	if err := errors.Join(errList...); err != nil {
		return ListUnpaidOrdersQuery{}, err
	}
	return ListUnpaidOrdersQuery{cutoff: cutoff, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q ListUnpaidOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListUnpaidOrdersQueryIsNotConstructed)
}

func (q ListUnpaidOrdersQuery) Cutoff() time.Time {
	return q.cutoff
}

func (q ListUnpaidOrdersQuery) Limit() int {
	return q.limit
}
