package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// TemplateMagicLink is the email template handed to the dispatcher.
const TemplateMagicLink = "magic-link"

// UserStore is the part of the user repository the issuer needs.  Lookups
// return repository.ErrNotFound for missing or soft-deleted users, and
// Create returns repository.ErrConflict when the email is taken.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, email string) (*model.User, error)
}

// SessionStore reads and writes the single session record of a user.
type SessionStore interface {
	// SetMagicToken stores tokenID as the only pending sign-in identifier,
	// creating the record when needed.
	SetMagicToken(ctx context.Context, userID, tokenID string) error
	// ConsumeMagicToken clears tokenID and stores refreshDigest in one
	// update.  It returns repository.ErrNotFound when the record does not
	// currently hold tokenID.
	ConsumeMagicToken(ctx context.Context, userID, tokenID, refreshDigest string) error
	// RefreshDigest returns the stored refresh digest, or
	// repository.ErrNotFound when there is no record or it is null.
	RefreshDigest(ctx context.Context, userID string) (string, error)
	// ClearRefresh nulls the stored refresh digest.
	ClearRefresh(ctx context.Context, userID string) error
}

// EmailDispatcher hands a templated message to the delivery pipeline.
type EmailDispatcher interface {
	Send(ctx context.Context, recipient, templateID string, payload map[string]any) error
}

// Session is the credential pair handed out after a successful sign-in.
type Session struct {
	User    *model.User
	Access  Token
	Refresh Token
}

// MagicLinkIssuer runs the passwordless sign-in flow.
type MagicLinkIssuer struct {
	users       UserStore
	sessions    SessionStore
	codec       *Codec
	mail        EmailDispatcher
	callbackURL string
	log         *slog.Logger
}

// NewMagicLinkIssuer wires the issuer.  callbackURL is the client page that
// receives the token as the `token` query parameter.
func NewMagicLinkIssuer(users UserStore, sessions SessionStore, codec *Codec, mail EmailDispatcher, callbackURL string, log *slog.Logger) *MagicLinkIssuer {
	if log == nil {
		log = slog.Default()
	}
	return &MagicLinkIssuer{
		users:       users,
		sessions:    sessions,
		codec:       codec,
		mail:        mail,
		callbackURL: callbackURL,
		log:         log,
	}
}

// RequestSignIn finds or creates the user for email and emails a fresh
// magic link.  The outcome is the same for new and existing accounts; only
// storage failures are returned.
func (m *MagicLinkIssuer) RequestSignIn(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := m.findOrCreate(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// the address belongs to a deleted account
		m.log.InfoContext(ctx, "sign-in requested for unavailable account")
		return nil
	}
	if err != nil {
		return Unexpected(err)
	}

	tokenID := uuid.NewString()
	tok, err := m.codec.MintMagic(user.ID, tokenID)
	if err != nil {
		return Unexpected(err)
	}
	if err := m.sessions.SetMagicToken(ctx, user.ID, tokenID); err != nil {
		return Unexpected(fmt.Errorf("storing magic token: %w", err))
	}

	payload := map[string]any{
		"url":        m.link(tok.Value),
		"token":      tok.Value,
		"expiresAt":  tok.ExpiresAt.Format(time.RFC3339),
		"ttlMinutes": int(m.codec.TTL(PurposeMagic) / time.Minute),
	}
	if err := m.mail.Send(ctx, user.PrimaryEmail, TemplateMagicLink, payload); err != nil {
		m.log.ErrorContext(ctx, "dispatching magic link failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (m *MagicLinkIssuer) findOrCreate(ctx context.Context, email string) (*model.User, error) {
	u, err := m.users.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	u, err = m.users.Create(ctx, email)
	if errors.Is(err, repository.ErrConflict) {
		// lost a race with a concurrent request, or the row is soft-deleted
		return m.users.FindByEmail(ctx, email)
	}
	return u, err
}

func (m *MagicLinkIssuer) link(token string) string {
	u, err := url.Parse(m.callbackURL)
	if err != nil {
		return m.callbackURL + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// VerifySignIn exchanges a magic-link token for a session.  Forged,
// expired, unknown and already used tokens all return ErrInvalidToken.
func (m *MagicLinkIssuer) VerifySignIn(ctx context.Context, token string) (Session, error) {
	claims, reason := m.codec.Inspect(token, PurposeMagic)
	if reason != ReasonNone {
		m.log.DebugContext(ctx, "magic token rejected", "reason", string(reason))
		return Session{}, ErrInvalidToken
	}

	user, err := m.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidToken
	}
	if err != nil {
		return Session{}, Unexpected(err)
	}

	access, err := m.codec.MintAccess(user.ID)
	if err != nil {
		return Session{}, Unexpected(err)
	}
	refresh, err := m.codec.MintRefresh(user.ID)
	if err != nil {
		return Session{}, Unexpected(err)
	}

	err = m.sessions.ConsumeMagicToken(ctx, user.ID, claims.TokenID, HashToken(refresh.Value))
	if errors.Is(err, repository.ErrNotFound) {
		m.log.DebugContext(ctx, "magic token already consumed or replaced", "user_id", user.ID)
		return Session{}, ErrInvalidToken
	}
	if err != nil {
		return Session{}, Unexpected(err)
	}
	return Session{User: user, Access: access, Refresh: refresh}, nil
}

// Logout revokes every refresh token of userID with a single row write.
func (m *MagicLinkIssuer) Logout(ctx context.Context, userID string) error {
	if err := m.sessions.ClearRefresh(ctx, userID); err != nil {
		return Unexpected(err)
	}
	return nil
}
