package auth // package auth signs session tokens and runs the magic-link sign-in flow

import (
	"crypto/sha256" // SHA-256 digests for refresh tokens stored server side
	"crypto/subtle" // constant-time comparison of digests
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel comparisons against jwt errors
	"fmt"           // error wrapping
	"time"          // expirations and the clock

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Purpose names a signing context.  Each purpose has its own secret and
// lifetime, and the purpose is also written into the token so a token
// minted for one context never verifies in another.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
	PurposeMagic   Purpose = "magic"
)

// Reason explains why Inspect rejected a token.  It is meant for server
// logs only; clients see a single invalid-token outcome.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonMalformed      Reason = "malformed"
	ReasonExpired        Reason = "expired"
	ReasonSignature      Reason = "signature"
	ReasonWrongPurpose   Reason = "wrong_purpose"
	ReasonMissingSubject Reason = "missing_subject"
)

// Claims is the payload of every token the codec issues.  TokenID is only
// set on magic-link tokens, where it carries the single-use identifier.
type Claims struct {
	UserID  string  `json:"userId"`
	TokenID string  `json:"tokenId,omitempty"`
	Purpose Purpose `json:"typ"`
	jwt.RegisteredClaims
}

// Token is a signed token together with its expiry.
type Token struct {
	Value     string    // the serialized JWT string
	ExpiresAt time.Time // the UTC expiration time
}

// SigningKey is the secret and lifetime of one signing context.
type SigningKey struct {
	Secret []byte
	TTL    time.Duration
}

// CodecConfig groups the three signing contexts.  Issuer is written to and
// checked on every token.
type CodecConfig struct {
	Issuer  string
	Access  SigningKey
	Refresh SigningKey
	Magic   SigningKey
}

// Codec mints and verifies tokens.  It holds no mutable state and is safe
// for concurrent use.
type Codec struct {
	issuer string
	keys   map[Purpose]SigningKey
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock replaces the wall clock used for minting and verification.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec validates cfg and returns a Codec.  A missing secret or a
// non-positive TTL is a configuration error that callers treat as fatal at
// startup.
func NewCodec(cfg CodecConfig, opts ...Option) (*Codec, error) {
	keys := map[Purpose]SigningKey{
		PurposeAccess:  cfg.Access,
		PurposeRefresh: cfg.Refresh,
		PurposeMagic:   cfg.Magic,
	}
	for p, k := range keys {
		if len(k.Secret) == 0 {
			return nil, fmt.Errorf("auth: %s token secret is required", p)
		}
		if k.TTL <= 0 {
			return nil, fmt.Errorf("auth: %s token ttl must be positive", p)
		}
	}
	c := &Codec{issuer: cfg.Issuer, keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime of tokens minted for p.
func (c *Codec) TTL(p Purpose) time.Duration { return c.keys[p].TTL }

// MintAccess signs a short-lived access token for userID.
func (c *Codec) MintAccess(userID string) (Token, error) {
	return c.mint(PurposeAccess, userID, "")
}

// MintRefresh signs a long-lived refresh token for userID.
func (c *Codec) MintRefresh(userID string) (Token, error) {
	return c.mint(PurposeRefresh, userID, "")
}

// MintMagic signs a magic-link token embedding the single-use tokenID.
func (c *Codec) MintMagic(userID, tokenID string) (Token, error) {
	return c.mint(PurposeMagic, userID, tokenID)
}

func (c *Codec) mint(p Purpose, userID, tokenID string) (Token, error) {
	key := c.keys[p]
	now := c.now().UTC()
	exp := now.Add(key.TTL)
	claims := Claims{
		UserID:  userID,
		TokenID: tokenID,
		Purpose: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.Secret)
	if err != nil {
		return Token{}, fmt.Errorf("signing %s token: %w", p, err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks signature, expiry, issuer and purpose.  Every failure
// collapses to ok == false; use Inspect when the reason is needed for logs.
func (c *Codec) Verify(raw string, p Purpose) (Claims, bool) {
	claims, reason := c.Inspect(raw, p)
	return claims, reason == ReasonNone
}

// Inspect is Verify with the rejection reason preserved.
func (c *Codec) Inspect(raw string, p Purpose) (Claims, Reason) {
	key, ok := c.keys[p]
	if !ok || raw == "" {
		return Claims{}, ReasonMalformed
	}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return key.Secret, nil
	}, parserOpts...)
	if err != nil {
		return Claims{}, reasonFor(err)
	}
	if claims.Purpose != p {
		return Claims{}, ReasonWrongPurpose
	}
	if claims.UserID == "" || (p == PurposeMagic && claims.TokenID == "") {
		return Claims{}, ReasonMissingSubject
	}
	return claims, ReasonNone
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	default:
		return ReasonMalformed
	}
}

// HashToken returns the SHA-256 hex digest of a raw token.  Only digests of
// refresh tokens are stored, so a leaked row cannot be replayed.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DigestMatches reports whether raw hashes to digest, in constant time.
func DigestMatches(raw, digest string) bool {
	if raw == "" || digest == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(raw)), []byte(digest)) == 1
}
