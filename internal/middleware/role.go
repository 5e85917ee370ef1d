package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// PlatformRoleStore returns the platform role of an active user.
type PlatformRoleStore interface {
	PlatformRole(ctx context.Context, userID string) (model.PlatformRole, error)
}

// RequirePlatformRole returns a middleware function that enforces that the
// authenticated user has one of the specified platform roles.  It must be
// mounted after SessionAuth; running without an identity is a wiring bug
// reported as auth.ErrNoIdentity.  Users whose role is not in the allowed
// set get auth.ErrUnauthorizedRole.
func RequirePlatformRole(store PlatformRoleStore, roles ...model.PlatformRole) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[model.PlatformRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := auth.FromContext(c.Request().Context())
			if !ok {
				return auth.ErrNoIdentity
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
			defer cancel()

			role, err := store.PlatformRole(ctx, ac.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				return auth.ErrUnauthorizedRole
			}
			if err != nil {
				return auth.Unexpected(err)
			}
			if !allowed[role] {
				return auth.ErrUnauthorizedRole
			}
			setIdentity(c, ac.WithPlatformRole(role))
			return next(c)
		}
	}
}
