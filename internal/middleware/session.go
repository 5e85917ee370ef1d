package middleware // middleware provides the session and authorization gates

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/logger"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// storeTimeout bounds every storage round-trip made by a gate.
const storeTimeout = 5 * time.Second

// SessionUsers looks up active users; missing or soft-deleted users yield
// repository.ErrNotFound.
type SessionUsers interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// RefreshStore returns the stored refresh digest of a user, or
// repository.ErrNotFound when there is none.
type RefreshStore interface {
	RefreshDigest(ctx context.Context, userID string) (string, error)
}

// SessionConfig wires the session gate.
type SessionConfig struct {
	Codec    *auth.Codec
	Users    SessionUsers
	Sessions RefreshStore
	Cookies  CookieConfig
	Log      *slog.Logger
}

// SessionAuth returns the middleware that establishes identity.  A valid
// access token is accepted without touching storage.  Otherwise the refresh
// token must verify, belong to an active user and match the stored digest;
// then a new access token is issued (the refresh token is left as is) and
// the request continues.  Every other outcome is an invalid-credential
// error, except storage failures which are unexpected.
func SessionAuth(cfg SessionConfig) echo.MiddlewareFunc {
	log := cfg.Log
	if log == nil {
		log = logger.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if raw := accessCandidate(c); raw != "" {
				claims, reason := cfg.Codec.Inspect(raw, auth.PurposeAccess)
				if reason == auth.ReasonNone {
					setIdentity(c, auth.AuthContext{UserID: claims.UserID})
					return next(c)
				}
				log.DebugContext(ctx, "access token rejected", "reason", string(reason))
			}

			userID, err := renew(c, cfg, log)
			if err != nil {
				return err
			}
			setIdentity(c, auth.AuthContext{UserID: userID})
			return next(c)
		}
	}
}

// renew runs the refresh path and returns the authenticated user id.
func renew(c echo.Context, cfg SessionConfig, log *slog.Logger) (string, error) {
	raw := refreshCandidate(c)
	if raw == "" {
		return "", auth.ErrInvalidToken
	}
	ctx := c.Request().Context()
	claims, reason := cfg.Codec.Inspect(raw, auth.PurposeRefresh)
	if reason != auth.ReasonNone {
		log.DebugContext(ctx, "refresh token rejected", "reason", string(reason))
		return "", auth.ErrInvalidToken
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := cfg.Users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		log.DebugContext(ctx, "refresh token for unknown user", "user_id", claims.UserID)
		return "", auth.ErrInvalidToken
	}
	if err != nil {
		return "", auth.Unexpected(err)
	}

	digest, err := cfg.Sessions.RefreshDigest(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		log.DebugContext(ctx, "refresh token revoked", "user_id", user.ID)
		return "", auth.ErrInvalidToken
	}
	if err != nil {
		return "", auth.Unexpected(err)
	}
	if !auth.DigestMatches(raw, digest) {
		log.DebugContext(ctx, "refresh token does not match stored value", "user_id", user.ID)
		return "", auth.ErrInvalidToken
	}

	access, err := cfg.Codec.MintAccess(user.ID)
	if err != nil {
		return "", auth.Unexpected(err)
	}
	SetAccessCookie(c, cfg.Cookies, access, cfg.Codec.TTL(auth.PurposeAccess))
	c.Response().Header().Set(HeaderAccessToken, access.Value)
	return user.ID, nil
}

// setIdentity replaces the request context with one carrying a.
func setIdentity(c echo.Context, a auth.AuthContext) {
	req := c.Request()
	ctx := auth.NewContext(req.Context(), a)
	ctx = logger.WithUserID(ctx, a.UserID)
	c.SetRequest(req.WithContext(ctx))
}
