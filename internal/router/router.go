package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/sudharsan3110/RSVP-2-sub001/internal/handler"    // handlers that implement the endpoints
	"github.com/sudharsan3110/RSVP-2-sub001/internal/middleware" // session and role gates
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

// Gates carries the middleware shared by the route groups.
type Gates struct {
	// Session establishes identity and must run before any role gate.
	Session echo.MiddlewareFunc
	// SignInLimiter throttles magic-link requests.
	SignInLimiter echo.MiddlewareFunc
	// EventRoles resolves cohost roles for RequireEventRole.
	EventRoles middleware.EventRoleStore
	// PlatformRoles resolves platform roles for RequirePlatformRole.
	PlatformRoles middleware.PlatformRoleStore
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the sign-in flow under /v1/auth.  Requesting and
// verifying a link are public; logout and me need a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Gates) {
	grp := e.Group("/v1/auth")
	grp.POST("/signin", a.SignIn, g.SignInLimiter)
	grp.POST("/verify-signin", a.VerifySignIn)
	grp.POST("/logout", a.Logout, g.Session)
	grp.GET("/me", a.Me, g.Session)
}

// RegisterUsers registers the profile endpoints of the current user.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, g Gates) {
	grp := e.Group("/v1/users", g.Session)
	grp.PATCH("/me", u.UpdateProfile)
	grp.DELETE("/me", u.DeleteAccount)
}

// RegisterEvents registers event, attendee and cohost endpoints.  Reading
// an event is public and cached; every write is gated on the caller's
// cohost role for that event.
func RegisterEvents(e *echo.Echo, ev *handler.EventHandler, at *handler.AttendeeHandler, co *handler.CohostHandler, g Gates) {
	e.GET("/v1/events/:eventId", ev.Get, ev.Cache.Middleware())

	managers := middleware.RequireEventRole(g.EventRoles, model.RoleCreator, model.RoleManager)
	viewers := middleware.RequireEventRole(g.EventRoles, model.RoleCreator, model.RoleManager, model.RoleReadOnly)
	creator := middleware.RequireEventRole(g.EventRoles, model.RoleCreator)

	grp := e.Group("/v1/events", g.Session)
	grp.POST("", ev.Create)
	grp.PATCH("/:eventId", ev.Update, managers)
	grp.DELETE("/:eventId", ev.Delete, creator)

	grp.POST("/:eventId/attendees", at.Register)
	grp.GET("/:eventId/attendees", at.List, viewers)

	grp.GET("/:eventId/cohosts", co.List, viewers)
	grp.DELETE("/:eventId/cohosts/:userId", co.Remove, creator)

	// the event id of this route travels in the body
	e.POST("/v1/cohosts", co.Add, g.Session, managers)
}

// RegisterAdmin registers platform-administration endpoints.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, g Gates) {
	grp := e.Group("/v1/admin", g.Session, middleware.RequirePlatformRole(g.PlatformRoles, model.PlatformAdmin))
	grp.GET("/users/:userId", a.GetUser)
	grp.POST("/users/:userId/revoke", a.RevokeSessions)
	grp.PUT("/users/:userId/role", a.SetRole)
}
