package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"fitlog/internal/delivery/http/response"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if renderErr := response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details()); renderErr != nil {
			m.logger.Error("failed to render error response", slog.Any("error", renderErr))
		}

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := fmt.Sprintf("%v", httpErr.Message)
		if renderErr := response.Error(c, httpErr.Code, "HTTP_ERROR", message, message); renderErr != nil {
			m.logger.Error("failed to render error response", slog.Any("error", renderErr))
		}

		return
	}

	m.logger.Error("Unhandled error",
		slog.String("error", err.Error()),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	if renderErr := response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", ""); renderErr != nil {
		m.logger.Error("failed to render error response", slog.Any("error", renderErr))
	}
}
