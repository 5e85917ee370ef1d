package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/middleware"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// UserHandler serves the profile of the authenticated user.
type UserHandler struct {
	Users     *repository.UserRepo
	Sessions  *repository.SessionRepo
	Cookies   middleware.CookieConfig
	Validator *Validator
}

type profileReq struct {
	FullName       *string `json:"fullName" validate:"omitempty,max=100"`
	UserName       *string `json:"userName" validate:"omitempty,max=40"`
	SecondaryEmail *string `json:"secondaryEmail"`
}

// UpdateProfile handles PATCH /v1/users/me.  An empty secondaryEmail
// removes it.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.SecondaryEmail != nil {
		if s := strings.TrimSpace(*req.SecondaryEmail); s != "" && !h.Validator.ValidEmail(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "secondaryEmail must be a valid email"})
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, ac.UserID, repository.ProfileUpdate{
		FullName:       req.FullName,
		UserName:       req.UserName,
		SecondaryEmail: req.SecondaryEmail,
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return auth.ErrInvalidToken
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "profile conflicts with an existing account"})
	case err != nil:
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// DeleteAccount handles DELETE /v1/users/me: the user is soft-deleted, its
// refresh tokens revoked and the cookies cleared.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SoftDelete(ctx, ac.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return auth.Unexpected(err)
	}
	if err := h.Sessions.ClearRefresh(ctx, ac.UserID); err != nil {
		return auth.Unexpected(err)
	}
	middleware.ClearSessionCookies(c, h.Cookies)
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted"})
}
