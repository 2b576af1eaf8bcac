package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// applyFunc mutates a loaded order. It reports changed=false for idempotent
// repeats, in which case nothing is written.
type applyFunc func(o *order.Order) (changed bool, err error)

// runTransition loads the order, applies fn and persists the result with a
// compare-and-swap on the order version, all inside one unit of work.
func runTransition(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	orderID kernel.UUID,
	fn applyFunc,
) (*order.Order, bool, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	changed, err := fn(o)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return o, false, nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	return o, true, nil
}

// loadOrder reads an order in its own short transaction.
func loadOrder(ctx context.Context, uowFactory OrderUoWFactory, orderID kernel.UUID) (*order.Order, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().Get(ctx, orderID)
}

func changedOnly(err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return true, nil
}
