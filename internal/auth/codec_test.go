package auth

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() CodecConfig {
	return CodecConfig{
		Issuer:  "rsvp-test",
		Access:  SigningKey{Secret: []byte("access-secret-0123456789abcdef"), TTL: 15 * time.Minute},
		Refresh: SigningKey{Secret: []byte("refresh-secret-0123456789abcdef"), TTL: 7 * 24 * time.Hour},
		Magic:   SigningKey{Secret: []byte("magic-secret-0123456789abcdef"), TTL: 10 * time.Minute},
	}
}

func newTestCodec(t *testing.T, now time.Time) *Codec {
	t.Helper()
	c, err := NewCodec(testConfig(), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestMintVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t, t0)

	access, err := c.MintAccess("user-1")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	if want := t0.Add(15 * time.Minute); !access.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", access.ExpiresAt, want)
	}
	claims, ok := c.Verify(access.Value, PurposeAccess)
	if !ok || claims.UserID != "user-1" {
		t.Fatalf("Verify(access) = %+v, %v", claims, ok)
	}

	refresh, err := c.MintRefresh("user-1")
	if err != nil {
		t.Fatalf("MintRefresh: %v", err)
	}
	if _, ok := c.Verify(refresh.Value, PurposeRefresh); !ok {
		t.Fatalf("refresh token did not verify")
	}

	magic, err := c.MintMagic("user-1", "tok-1")
	if err != nil {
		t.Fatalf("MintMagic: %v", err)
	}
	claims, ok = c.Verify(magic.Value, PurposeMagic)
	if !ok || claims.TokenID != "tok-1" || claims.UserID != "user-1" {
		t.Fatalf("Verify(magic) = %+v, %v", claims, ok)
	}
}

func TestVerifyRejectsOtherPurposes(t *testing.T) {
	c := newTestCodec(t, t0)
	access, _ := c.MintAccess("user-1")
	refresh, _ := c.MintRefresh("user-1")
	magic, _ := c.MintMagic("user-1", "tok-1")

	if _, ok := c.Verify(access.Value, PurposeRefresh); ok {
		t.Fatalf("access token accepted as refresh")
	}
	if _, ok := c.Verify(refresh.Value, PurposeAccess); ok {
		t.Fatalf("refresh token accepted as access")
	}
	if _, ok := c.Verify(magic.Value, PurposeAccess); ok {
		t.Fatalf("magic token accepted as access")
	}
	if _, ok := c.Verify(access.Value, PurposeMagic); ok {
		t.Fatalf("access token accepted as magic")
	}
}

func TestPurposeCheckedEvenWithSharedSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Refresh.Secret = cfg.Access.Secret
	c, err := NewCodec(cfg, WithClock(func() time.Time { return t0 }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	refresh, _ := c.MintRefresh("user-1")
	if _, reason := c.Inspect(refresh.Value, PurposeAccess); reason != ReasonWrongPurpose {
		t.Fatalf("reason = %q, want %q", reason, ReasonWrongPurpose)
	}
}

func TestInspectExpired(t *testing.T) {
	access, _ := newTestCodec(t, t0).MintAccess("user-1")

	later := newTestCodec(t, t0.Add(15*time.Minute+time.Second))
	if _, reason := later.Inspect(access.Value, PurposeAccess); reason != ReasonExpired {
		t.Fatalf("reason = %q, want %q", reason, ReasonExpired)
	}
	before := newTestCodec(t, t0.Add(14*time.Minute))
	if _, ok := before.Verify(access.Value, PurposeAccess); !ok {
		t.Fatalf("token rejected before expiry")
	}
}

func TestInspectBadSignature(t *testing.T) {
	c := newTestCodec(t, t0)
	other := testConfig()
	other.Access.Secret = []byte("a-completely-different-secret!!")
	forger, err := NewCodec(other, WithClock(func() time.Time { return t0 }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	forged, _ := forger.MintAccess("user-1")
	if _, reason := c.Inspect(forged.Value, PurposeAccess); reason != ReasonSignature {
		t.Fatalf("reason = %q, want %q", reason, ReasonSignature)
	}
}

func TestInspectMalformed(t *testing.T) {
	c := newTestCodec(t, t0)
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, reason := c.Inspect(raw, PurposeAccess); reason != ReasonMalformed {
			t.Fatalf("Inspect(%q) reason = %q, want %q", raw, reason, ReasonMalformed)
		}
	}
}

func TestMagicTokenRequiresIdentifier(t *testing.T) {
	c := newTestCodec(t, t0)
	magic, _ := c.MintMagic("user-1", "")
	if _, reason := c.Inspect(magic.Value, PurposeMagic); reason != ReasonMissingSubject {
		t.Fatalf("reason = %q, want %q", reason, ReasonMissingSubject)
	}
}

func TestNewCodecRejectsMissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Magic.Secret = nil
	if _, err := NewCodec(cfg); err == nil {
		t.Fatalf("NewCodec accepted an empty magic secret")
	}
	cfg = testConfig()
	cfg.Access.TTL = 0
	if _, err := NewCodec(cfg); err == nil {
		t.Fatalf("NewCodec accepted a zero access ttl")
	}
}

func TestDigestMatches(t *testing.T) {
	d := HashToken("raw-refresh")
	if len(d) != 64 {
		t.Fatalf("len(HashToken) = %d, want 64", len(d))
	}
	if !DigestMatches("raw-refresh", d) {
		t.Fatalf("digest of the same token did not match")
	}
	if DigestMatches("other", d) || DigestMatches("", d) || DigestMatches("raw-refresh", "") {
		t.Fatalf("digest matched a different value")
	}
}
