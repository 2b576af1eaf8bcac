package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"fulfillment/internal/core/application/payments"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatusOf maps domain and application errors to HTTP status codes.
func StatusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, commands.ErrOtpAttemptsExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, order.ErrOtpMismatch),
		errors.Is(err, payments.ErrVerificationFailed),
		errors.Is(err, order.ErrGatewayOrderMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, errs.ErrVersionIsInvalid),
		errors.Is(err, order.ErrPaymentAlreadyCompleted),
		errors.Is(err, order.ErrNotOnlinePayment):
		return http.StatusConflict
	case errors.Is(err, payments.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ports.ErrGatewayRejected):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, order.ErrEmptyOrder):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders errors as Error bodies. Server errors are logged and
// their details are not sent to the client.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusOf(err)
		message := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			message = fmt.Sprint(he.Message)
		}
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Path(), "error", err)
			if status == http.StatusInternalServerError {
				message = http.StatusText(status)
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, Error{Code: status, Message: message})
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
		}
	}
}
