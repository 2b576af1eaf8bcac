package http

import (
	"net/http"

	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/labstack/echo/v4"
)

func (s *Server) SendOrderConfirmation(c echo.Context) error {
	return s.sendOrderNotification(c, notifications.TemplateOrderConfirmation)
}

// SendOrderStatusUpdate is open to delivery agents for their own orders.
func (s *Server) SendOrderStatusUpdate(c echo.Context) error {
	return s.sendOrderNotification(c, notifications.TemplateOrderStatusUpdate)
}

func (s *Server) SendDeliveryAssignment(c echo.Context) error {
	return s.sendOrderNotification(c, notifications.TemplateDeliveryAssignment)
}

func (s *Server) sendOrderNotification(c echo.Context, template notifications.TemplateType) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req OrderNotificationRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return err
	}

	var agent *kernel.UserID
	if p.Role == RoleDelivery {
		agent = &p.UserID
	}
	cmd, err := commands.NewSendOrderNotificationCommand(id, template, agent)
	if err != nil {
		return err
	}
	report, err := s.uc.SendNotification.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// GenerateOtp handles POST /api/notifications/generate-otp. The code is not
// stored anywhere.
func (s *Server) GenerateOtp(c echo.Context) error {
	var req GenerateOtpRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	length := req.Length
	if length == 0 {
		length = services.DefaultOtpLength
	}

	otp, err := s.uc.Otp.Generate(length)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OtpResponse{Otp: otp})
}

// SendPush handles POST /api/notifications/push. Provider failures are part
// of the result body, not an error status.
func (s *Server) SendPush(c echo.Context) error {
	var req PushRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	userID, err := kernel.NewUserID(req.UserID)
	if err != nil {
		return err
	}

	res := s.uc.Push.SendPush(c.Request().Context(), userID, ports.PushMessage{
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	return c.JSON(http.StatusOK, res)
}

// RegisterDevice handles POST /api/notifications/devices for the caller.
func (s *Server) RegisterDevice(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req RegisterDeviceRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	if err = s.uc.Devices.Register(c.Request().Context(), p.UserID, req.Token); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
