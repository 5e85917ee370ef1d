package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/middleware"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Issuer  *auth.MagicLinkIssuer
	Codec   *auth.Codec
	Users   *repository.UserRepo
	Cookies middleware.CookieConfig
}

func NewAuthHandler(issuer *auth.MagicLinkIssuer, codec *auth.Codec, users *repository.UserRepo, cookies middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{Issuer: issuer, Codec: codec, Users: users, Cookies: cookies}
}

// ----- DTOs -----

type signinReq struct {
	Email string `json:"email" validate:"required,email"`
}
type verifyReq struct {
	Token string `json:"token" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type sessionResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// SignIn emails a magic link.  The reply does not reveal whether the
// address already had an account.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signinReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Issuer.RequestSignIn(ctx, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "If the address is valid, a sign-in link is on its way"})
}

// VerifySignIn exchanges a magic-link token for a session: both cookies
// are set and the pair is also returned for header-based clients.
func (h *AuthHandler) VerifySignIn(c echo.Context) error {
	var req verifyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Issuer.VerifySignIn(ctx, req.Token)
	if err != nil {
		return err
	}
	middleware.SetAccessCookie(c, h.Cookies, sess.Access, h.Codec.TTL(auth.PurposeAccess))
	middleware.SetRefreshCookie(c, h.Cookies, sess.Refresh, h.Codec.TTL(auth.PurposeRefresh))
	return c.JSON(http.StatusOK, sessionResp{
		User:    sess.User,
		Access:  tokenPart{Token: sess.Access.Value, Expires: sess.Access.ExpiresAt},
		Refresh: tokenPart{Token: sess.Refresh.Value, Expires: sess.Refresh.ExpiresAt},
	})
}

// Logout revokes every refresh token of the current user and clears the
// cookies.  Access tokens already issued stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Issuer.Logout(ctx, ac.UserID); err != nil {
		return err
	}
	middleware.ClearSessionCookies(c, h.Cookies)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByID(ctx, ac.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		// the account was deleted while the access token was still valid
		return auth.ErrInvalidToken
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
