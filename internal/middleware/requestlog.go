package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/logger"
)

// RequestLogger copies the request id (set by echo's RequestID middleware)
// into the request context so every log line carries it, then logs one line
// per request.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = req.Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				req = req.WithContext(logger.WithRequestID(req.Context(), id))
				c.SetRequest(req)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			// identity may have been added further down the chain
			log.InfoContext(c.Request().Context(), "request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
