package commands

import (
	"context"
)

// UpdateDeliveryStatusCommandHandler maps agent status reports onto the
// dispatch and confirmation handlers.
type UpdateDeliveryStatusCommandHandler struct {
	dispatch MarkOutForDeliveryCommandHandler
	confirm  ConfirmDeliveredCommandHandler
}

func NewUpdateDeliveryStatusCommandHandler(
	dispatch MarkOutForDeliveryCommandHandler,
	confirm ConfirmDeliveredCommandHandler,
) UpdateDeliveryStatusCommandHandler {
	return UpdateDeliveryStatusCommandHandler{dispatch: dispatch, confirm: confirm}
}

func (h UpdateDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDeliveryStatusCommand,
) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	if cmd.Update() == DeliveryDelivered {
		agent := cmd.Agent()
		confirmCmd, err := NewConfirmDeliveredCommand(cmd.OrderID(), cmd.Otp(), &agent)
		if err != nil {
			return TransitionResult{}, err
		}
		return h.confirm.Handle(ctx, confirmCmd)
	}

	pickupCmd, err := NewAgentPickupCommand(cmd.OrderID(), cmd.Agent())
	if err != nil {
		return TransitionResult{}, err
	}
	return h.dispatch.Handle(ctx, pickupCmd)
}
