package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/labstack/echo/v4"
)

// CreatePayment handles POST /api/payment/create-order.
func (s *Server) CreatePayment(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req CreatePaymentRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreatePaymentCommand(id, req.Currency, p.UserID)
	if err != nil {
		return err
	}
	res, err := s.uc.CreatePayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, PaymentIntentResponse{
		OrderID:        res.Order.ID().String(),
		GatewayOrderID: res.GatewayOrder.ID,
		Amount:         res.GatewayOrder.AmountMinorUnits,
		Currency:       res.GatewayOrder.Currency,
	})
}

// VerifyPayment handles POST /api/payment/verify. A signature that does not
// verify is answered with 422 and leaves the order untouched.
func (s *Server) VerifyPayment(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req VerifyPaymentRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewConfirmPaymentCommand(id, req.GatewayOrderID, req.GatewayPaymentID, req.Signature, p.UserID)
	if err != nil {
		return err
	}
	res, err := s.uc.ConfirmPayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, VerifyPaymentResponse{
		Verified:      true,
		Changed:       res.Changed,
		Order:         orderFromAggregate(res.Order, p),
		Notifications: res.Notifications,
	})
}
