package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// UpdateDeliveryStatus handles PUT /api/delivery/assignments/:id/status.
// picked and in-transit dispatch the order; delivered needs the customer's code.
func (s *Server) UpdateDeliveryStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req DeliveryStatusRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	update, err := commands.ParseDeliveryUpdate(req.Status)
	if err != nil {
		return err
	}
	cmd, err := commands.NewUpdateDeliveryStatusCommand(id, update, req.Otp, p.UserID)
	if err != nil {
		return err
	}
	res, err := s.uc.UpdateDeliveryStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transitionResponse(res, p))
}

// ListAssignments handles GET /api/delivery/assignments for the calling agent.
func (s *Server) ListAssignments(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	query, err := queries.NewListDeliveryAssignmentsQuery(p.UserID)
	if err != nil {
		return err
	}
	views, err := s.uc.ListAssignments.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentsResponse(views))
}
