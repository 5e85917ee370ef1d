package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// EventIDParam is the path parameter the event role gate reads first.
const EventIDParam = "eventId"

// EventRoleStore resolves the cohost role of a user on an event, returning
// repository.ErrNotFound when the user has none.
type EventRoleStore interface {
	FindRole(ctx context.Context, userID, eventID string) (model.CohostRole, error)
}

// RequireEventRole returns a middleware that only lets cohosts holding one
// of roles through.  The event id comes from the `eventId` path parameter,
// or from the `eventId` field of a JSON body when the path has none; with
// neither the request fails before any lookup.  The resolved role is added
// to the request's AuthContext.
func RequireEventRole(store EventRoleStore, roles ...model.CohostRole) echo.MiddlewareFunc {
	allowed := make(map[model.CohostRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := auth.FromContext(c.Request().Context())
			if !ok {
				return auth.ErrNoIdentity
			}
			eventID, err := resolveEventID(c)
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					return he
				}
				return auth.Unexpected(err)
			}
			if eventID == "" {
				return auth.ErrEventIDRequired
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
			defer cancel()
			role, err := store.FindRole(ctx, ac.UserID, eventID)
			if errors.Is(err, repository.ErrNotFound) {
				return auth.ErrUnauthorizedRole
			}
			if err != nil {
				return auth.Unexpected(err)
			}
			if !allowed[role] {
				return auth.ErrUnauthorizedRole
			}
			setIdentity(c, ac.WithEventRole(eventID, role))
			return next(c)
		}
	}
}

// resolveEventID prefers the path parameter and falls back to the body.
// The body is scanned only up to the top-level `eventId` member and what was
// consumed is put back, so the handler can bind it again.  A body that is
// not a JSON object yields an empty id.
func resolveEventID(c echo.Context) (string, error) {
	if id := strings.TrimSpace(c.Param(EventIDParam)); id != "" {
		return id, nil
	}
	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody {
		return "", nil
	}
	var consumed bytes.Buffer
	dec := json.NewDecoder(io.TeeReader(req.Body, &consumed))
	dec.UseNumber()
	id, err := scanEventID(dec)
	req.Body = readCloser{Reader: io.MultiReader(&consumed, req.Body), Closer: req.Body}
	if err == nil {
		return id, nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		httpErr   *echo.HTTPError
	)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return "", nil
	case errors.As(err, &httpErr):
		// body limit exceeded
		return "", httpErr
	}
	return "", fmt.Errorf("reading request body: %w", err)
}

// scanEventID walks the members of a top-level JSON object and returns the
// `eventId` value.  Strings are trimmed; numbers keep their literal text.
func scanEventID(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return "", nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if key, _ := tok.(string); key != "eventId" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return "", err
			}
			continue
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return "", err
		}
		switch v := v.(type) {
		case string:
			return strings.TrimSpace(v), nil
		case json.Number:
			return v.String(), nil
		}
		return "", nil
	}
	return "", nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
