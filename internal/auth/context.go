package auth

import (
	"context"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

// AuthContext is the identity and permission resolved for one request.  The
// session gate creates it with UserID set; role gates derive copies carrying
// the role they checked.  Values are never modified in place.
type AuthContext struct {
	UserID       string
	EventID      string
	EventRole    model.CohostRole
	PlatformRole model.PlatformRole
}

// WithEventRole returns a copy of a scoped to eventID with the given role.
func (a AuthContext) WithEventRole(eventID string, role model.CohostRole) AuthContext {
	a.EventID = eventID
	a.EventRole = role
	return a
}

// WithPlatformRole returns a copy of a carrying the platform role.
func (a AuthContext) WithPlatformRole(role model.PlatformRole) AuthContext {
	a.PlatformRole = role
	return a
}

type contextKey struct{}

// NewContext returns a child of ctx carrying a.
func NewContext(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the AuthContext stored in ctx.  ok is false when no
// gate has established identity, or when the stored identity is empty.
func FromContext(ctx context.Context) (AuthContext, bool) {
	a, ok := ctx.Value(contextKey{}).(AuthContext)
	if !ok || a.UserID == "" {
		return AuthContext{}, false
	}
	return a, true
}
