package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/auth"
)

// Credential names.  Browsers carry the tokens in cookies; other clients
// send the headers instead (or a Bearer access token).
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	HeaderAccessToken  = "X-Access-Token"
	HeaderRefreshToken = "X-Refresh-Token"
)

// CookieConfig holds the attributes shared by both session cookies.
type CookieConfig struct {
	Domain string
	Secure bool // true in production: cookies only travel over HTTPS
}

func (cc CookieConfig) cookie(name, value string, ttl time.Duration, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cc.Domain,
		Expires:  expires,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SetAccessCookie writes the access credential with a lifetime of ttl.
func SetAccessCookie(c echo.Context, cc CookieConfig, tok auth.Token, ttl time.Duration) {
	c.SetCookie(cc.cookie(AccessCookie, tok.Value, ttl, tok.ExpiresAt))
}

// SetRefreshCookie writes the refresh credential with a lifetime of ttl.
func SetRefreshCookie(c echo.Context, cc CookieConfig, tok auth.Token, ttl time.Duration) {
	c.SetCookie(cc.cookie(RefreshCookie, tok.Value, ttl, tok.ExpiresAt))
}

// ClearSessionCookies expires both credentials on the client.
func ClearSessionCookies(c echo.Context, cc CookieConfig) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := cc.cookie(name, "", 0, time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}

func accessCandidate(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	req := c.Request()
	if v := strings.TrimSpace(req.Header.Get(HeaderAccessToken)); v != "" {
		return v
	}
	if h := req.Header.Get(echo.HeaderAuthorization); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func refreshCandidate(c echo.Context) string {
	if ck, err := c.Cookie(RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	return strings.TrimSpace(c.Request().Header.Get(HeaderRefreshToken))
}
