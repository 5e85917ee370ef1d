package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// TemplateCohostAdded is the email sent to a newly added cohost.
const TemplateCohostAdded = "cohost-added"

// CohostHandler manages the cohosts of an event.
type CohostHandler struct {
	Cohosts   *repository.CohostRepo
	Users     *repository.UserRepo
	Events    *repository.EventRepo
	Mail      auth.EmailDispatcher
	ClientURL string
	Log       *slog.Logger
}

type addCohostReq struct {
	EventID string `json:"eventId" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Role    string `json:"role" validate:"required,oneof=MANAGER READ_ONLY CELEBRITY"`
}

// List handles GET /v1/events/:eventId/cohosts.
func (h *CohostHandler) List(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Cohosts.ListByEvent(ctx, ac.EventID)
	if err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Add handles POST /v1/cohosts.  The event id travels in the body, where
// the event role gate found it.
func (h *CohostHandler) Add(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	var req addCohostReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	e, err := h.Events.GetByID(ctx, ac.EventID)
	if err != nil {
		return auth.Unexpected(err)
	}

	role := model.CohostRole(strings.ToUpper(req.Role))
	co, err := h.Cohosts.Add(ctx, ac.EventID, u.ID, role)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user is already a cohost"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role cannot be granted"})
	case err != nil:
		return auth.Unexpected(err)
	}
	co.Email, co.FullName = u.PrimaryEmail, u.FullName

	payload := map[string]any{
		"eventName": e.Name,
		"role":      string(role),
		"url":       strings.TrimRight(h.ClientURL, "/") + "/events/" + e.Slug,
	}
	if err := h.Mail.Send(ctx, u.PrimaryEmail, TemplateCohostAdded, payload); err != nil {
		h.Log.ErrorContext(ctx, "dispatching cohost notification failed", "event_id", e.ID, "error", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"cohost": co})
}

// Remove handles DELETE /v1/events/:eventId/cohosts/:userId.
func (h *CohostHandler) Remove(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	err := h.Cohosts.Remove(ctx, ac.EventID, c.Param("userId"))
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "the event creator cannot be removed"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cohost not found"})
	case err != nil:
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cohost removed"})
}
