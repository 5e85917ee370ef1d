package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/middleware"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// AttendeeHandler serves RSVPs.
type AttendeeHandler struct {
	Events    *repository.EventRepo
	Attendees *repository.AttendeeRepo
}

// Register handles POST /v1/events/:eventId/attendees for the current user.
// Repeating the call returns the existing registration.
func (h *AttendeeHandler) Register(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, err := h.Events.GetByID(ctx, c.Param(middleware.EventIDParam))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	if e.IsCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is cancelled"})
	}
	a, err := h.Attendees.Register(ctx, e.ID, ac.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"attendee": a})
}

// List handles GET /v1/events/:eventId/attendees.  The event role gate has
// already resolved the event.
func (h *AttendeeHandler) List(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Attendees.ListByEvent(ctx, ac.EventID)
	if err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
