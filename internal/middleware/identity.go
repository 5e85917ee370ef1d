package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
)

// currentUserID returns the authenticated user of the request, or "anon"
// when the session gate has not run or found nobody.
func currentUserID(c echo.Context) string {
	if ac, ok := auth.FromContext(c.Request().Context()); ok {
		return ac.UserID
	}
	return "anon"
}
