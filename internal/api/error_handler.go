package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hapl/fieldsales/internal/api/handler"
	"github.com/hapl/fieldsales/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the response envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, cause := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.Envelope{Status: code, Success: false, Message: msg, Error: cause})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, any) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message, ve.Cause
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized - User authentication required", nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials", nil
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role", nil
	case errors.Is(err, domain.ErrProfileInactive):
		return http.StatusBadRequest, "Profile InActive", nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access forbidden", nil
	case errors.Is(err, domain.ErrVisitNotFound):
		return http.StatusNotFound, "Visit not found", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", nil
	case errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound, "No Data Found", nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found", nil
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error", nil
}
