package middleware

import (
	"log/slog"
	"net/http"

	"energyfit/internal/delivery/api/response"
	deliverycontext "energyfit/internal/delivery/context"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware handles errors in the HTTP pipeline
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
		if appErr.HTTPCode() < http.StatusInternalServerError {
			_ = response.FromAppError(c, appErr)

			return
		}

		// Store, hashing and corruption failures: full detail in the log, generic body.
		m.logError(c, err)
		_ = response.FromAppError(c, domainerrors.ErrInternalError)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		// Unknown routes share the envelope of missing resources.
		if httpErr.Code == http.StatusNotFound {
			_ = response.FromAppError(c, domainerrors.ErrNotFound)

			return
		}

		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
		if httpErr.Code >= http.StatusInternalServerError {
			m.logError(c, err)
		}

		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)

		return
	}

	m.logError(c, err)
	_ = response.FromAppError(c, domainerrors.ErrInternalError)
}

func (m *ErrorMiddleware) logError(c echo.Context, err error) {
	deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)
}
