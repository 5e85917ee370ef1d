package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// AdminHandler serves platform-administration endpoints.  Routes are
// mounted behind the ADMIN platform role gate.
type AdminHandler struct {
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
}

// sessionState reports which credentials of a user are outstanding
// without exposing them.
type sessionState struct {
	RefreshActive    bool       `json:"refreshActive"`
	MagicLinkPending bool       `json:"magicLinkPending"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// GetUser returns any user, including soft-deleted ones, with the state of
// their session record.
func (h *AdminHandler) GetUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := c.Param("userId")
	u, err := h.Users.GetAnyByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}

	var state sessionState
	rec, err := h.Sessions.Get(ctx, id)
	switch {
	case err == nil:
		state.RefreshActive = rec.RefreshDigest != nil
		state.MagicLinkPending = rec.MagicToken != nil
		state.UpdatedAt = &rec.UpdatedAt
	case !errors.Is(err, repository.ErrNotFound):
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u, "session": state})
}

// RevokeSessions forces the user to sign in again once their access token
// expires.
func (h *AdminHandler) RevokeSessions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := c.Param("userId")
	if _, err := h.Users.GetAnyByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return auth.Unexpected(err)
	}
	if err := h.Sessions.ClearRefresh(ctx, id); err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "sessions revoked"})
}

type setRoleReq struct {
	Role string `json:"role" validate:"required,oneof=ADMIN USER"`
}

// SetRole handles PUT /v1/admin/users/:userId/role.
func (h *AdminHandler) SetRole(c echo.Context) error {
	var req setRoleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := c.Param("userId")
	err := h.Users.SetPlatformRole(ctx, id, model.PlatformRole(req.Role))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
