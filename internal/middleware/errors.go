package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
)

// StatusFor maps an auth error kind to its HTTP status.
func StatusFor(k auth.Kind) int {
	switch k {
	case auth.KindInvalidCredential, auth.KindIdentityContract:
		return http.StatusUnauthorized
	case auth.KindUnauthorizedRole:
		return http.StatusForbidden
	case auth.KindMissingIdentifier:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders every error returned by handlers and gates.  Auth
// errors get their mapped status and client-safe message; echo errors keep
// their code; anything else becomes a generic 500 whose detail only reaches
// the log.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ctx := c.Request().Context()
		status, msg := http.StatusInternalServerError, "Internal server error"

		var ae *auth.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			status, msg = StatusFor(ae.Kind), ae.Message
			switch ae.Kind {
			case auth.KindIdentityContract:
				log.ErrorContext(ctx, "authorization gate ran without an established identity",
					"kind", ae.Kind.String(), "method", c.Request().Method, "route", c.Path())
			case auth.KindUnexpected:
				log.ErrorContext(ctx, "request failed", "error", err, "route", c.Path())
			default:
				log.DebugContext(ctx, "request denied", "kind", ae.Kind.String(), "route", c.Path())
			}
			if status == http.StatusInternalServerError {
				msg = "Internal server error"
			}
		case errors.As(err, &he):
			status = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = fmt.Sprint(he.Message)
			}
			if status >= http.StatusInternalServerError {
				log.ErrorContext(ctx, "request failed", "error", err, "route", c.Path())
				msg = "Internal server error"
			}
		default:
			log.ErrorContext(ctx, "request failed", "error", err, "route", c.Path())
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, echo.Map{"error": msg})
		}
		if werr != nil {
			log.ErrorContext(ctx, "writing error response failed", "error", werr)
		}
	}
}
