package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/middleware"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// EventHandler serves event CRUD.  Writes go through the event role gate,
// which leaves the event id in the AuthContext.
type EventHandler struct {
	Events *repository.EventRepo
	Cache  *middleware.ResponseCache
	policy *bluemonday.Policy
}

func NewEventHandler(events *repository.EventRepo, cache *middleware.ResponseCache) *EventHandler {
	return &EventHandler{Events: events, Cache: cache, policy: bluemonday.UGCPolicy()}
}

type createEventReq struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=10000"`
	Venue       string    `json:"venue" validate:"max=300"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
}

type updateEventReq struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=10000"`
	Venue       *string    `json:"venue" validate:"omitempty,max=300"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gte=0"`
	IsCancelled *bool      `json:"isCancelled"`
}

// eventPath is the public URL of an event, used as its cache key.
func eventPath(id string) string { return "/v1/events/" + id }

// Create handles POST /v1/events.  The caller becomes the CREATOR cohost.
func (h *EventHandler) Create(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	var req createEventReq
	if err := bind(c, &req); err != nil {
		return err
	}
	e := &model.Event{
		CreatorID:   ac.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: h.policy.Sanitize(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Capacity:    req.Capacity,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Events.CreateWithCreator(ctx, e); err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": e})
}

// Get handles GET /v1/events/:eventId.  It is public.
func (h *EventHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, err := h.Events.GetByID(ctx, c.Param(middleware.EventIDParam))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": e})
}

// Update handles PATCH /v1/events/:eventId.
func (h *EventHandler) Update(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	var req updateEventReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cur, err := h.Events.GetByID(ctx, ac.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	start, end := cur.StartTime, cur.EndTime
	if req.StartTime != nil {
		start = req.StartTime.UTC()
		req.StartTime = &start
	}
	if req.EndTime != nil {
		end = req.EndTime.UTC()
		req.EndTime = &end
	}
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endTime must be after startTime"})
	}

	upd := repository.EventUpdate{
		Venue:       req.Venue,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		IsCancelled: req.IsCancelled,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		upd.Name = &name
	}
	if req.Description != nil {
		desc := h.policy.Sanitize(*req.Description)
		upd.Description = &desc
	}
	e, err := h.Events.Update(ctx, ac.EventID, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	h.Cache.Invalidate(ctx, eventPath(ac.EventID))
	return c.JSON(http.StatusOK, echo.Map{"event": e})
}

// Delete handles DELETE /v1/events/:eventId.
func (h *EventHandler) Delete(c echo.Context) error {
	ac, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.ErrNoIdentity
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Events.SoftDelete(ctx, ac.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return auth.Unexpected(err)
	}
	h.Cache.Invalidate(ctx, eventPath(ac.EventID))
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}
