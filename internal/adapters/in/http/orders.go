package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// CreateOrder handles POST /api/orders. The caller becomes the owner.
func (s *Server) CreateOrder(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req CreateOrderRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return err
	}
	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		price, err := kernel.NewMoney(it.UnitPrice)
		if err != nil {
			return err
		}
		item, err := order.NewItem(it.ProductID, it.Name, price, it.Quantity, it.RequiresPrescription)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	var location *kernel.GeoPoint
	if l := req.CustomerLocation; l != nil {
		point, err := kernel.NewGeoPoint(l.Latitude, l.Longitude, l.Accuracy, l.CapturedAt)
		if err != nil {
			return err
		}
		location = &point
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), p.UserID, items, req.ShippingAddress, method, location)
	if err != nil {
		return err
	}
	res, err := s.uc.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, transitionResponse(res, p))
}

// GetOrder handles GET /api/orders/:id for the owner, admins and the
// assigned delivery agent.
func (s *Server) GetOrder(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return err
	}

	view, err := s.uc.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	switch p.Role {
	case RoleCustomer:
		if view.CustomerID != p.UserID {
			return commands.ErrNotPermitted
		}
	case RoleDelivery:
		if view.DeliveryPersonID == nil || *view.DeliveryPersonID != p.UserID {
			return commands.ErrNotPermitted
		}
	}
	return c.JSON(http.StatusOK, orderFromView(view, p))
}

func (s *Server) ApproveOrder(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewApproveOrderCommand(id)
	if err != nil {
		return err
	}
	res, err := s.uc.ApproveOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transitionResponse(res, p))
}

// CancelOrder lets admins cancel any order and customers their own.
func (s *Server) CancelOrder(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req CancelOrderRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	var requester *kernel.UserID
	if p.Role != RoleAdmin {
		requester = &p.UserID
	}
	cmd, err := commands.NewCancelOrderCommand(id, req.Reason, requester)
	if err != nil {
		return err
	}
	res, err := s.uc.CancelOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transitionResponse(res, p))
}

func (s *Server) MarkOutForDelivery(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewMarkOutForDeliveryCommand(id)
	if err != nil {
		return err
	}
	res, err := s.uc.MarkOutForDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transitionResponse(res, p))
}

func (s *Server) AssignDelivery(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req AssignDeliveryRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	agent, err := kernel.NewUserID(req.DeliveryPersonID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignDeliveryCommand(id, agent, req.ExpectedAt)
	if err != nil {
		return err
	}
	res, err := s.uc.AssignDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transitionResponse(res, p))
}

// orderID binds the :id path parameter with the same simple-style rules the
// OpenAPI document declares for it.
func orderID(c echo.Context) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	return kernel.UUIDFromBytes(id[:])
}

func parseOrderID(raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError("order id")
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("order id", err)
	}
	return id, nil
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return nil
}
