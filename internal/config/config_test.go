package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testMaster = "0123456789abcdef0123456789abcdef-master"

func mapEnv(m map[string]string) env {
	return env{lookup: func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}}
}

func baseEnv() map[string]string {
	return map[string]string{
		"DB_USER":    "rsvp",
		"DB_NAME":    "rsvp",
		"APP_SECRET": testMaster,
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(mapEnv(baseEnv()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute || cfg.Auth.RefreshTTL != 7*24*time.Hour || cfg.Auth.MagicTTL != 10*time.Minute {
		t.Fatalf("ttls = %v %v %v", cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, cfg.Auth.MagicTTL)
	}
	if cfg.Auth.SecureCookies {
		t.Fatalf("secure cookies outside production")
	}
	if cfg.MagicLinkCallback() != "http://localhost:3000/auth/verify" {
		t.Fatalf("callback = %q", cfg.MagicLinkCallback())
	}
	if cfg.Queue.MailQueue != "mail.requested" || cfg.Queue.Enabled {
		t.Fatalf("queue = %+v", cfg.Queue)
	}
}

func TestParseRequiresDatabase(t *testing.T) {
	m := baseEnv()
	delete(m, "DB_NAME")
	if _, err := parse(mapEnv(m)); err == nil {
		t.Fatalf("parse accepted a config without DB_NAME")
	}
}

func TestSecretsDerivedPerPurpose(t *testing.T) {
	cfg, err := parse(mapEnv(baseEnv()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a := cfg.Auth
	if len(a.AccessSecret) != 32 || bytes.Equal(a.AccessSecret, a.RefreshSecret) ||
		bytes.Equal(a.AccessSecret, a.MagicSecret) || bytes.Equal(a.RefreshSecret, a.MagicSecret) {
		t.Fatalf("derived secrets are not distinct 32-byte keys")
	}
	again, _ := DeriveSecret([]byte(testMaster), "access")
	if !bytes.Equal(again, a.AccessSecret) {
		t.Fatalf("derivation is not deterministic")
	}
}

func TestExplicitSecretWins(t *testing.T) {
	m := baseEnv()
	m["MAGIC_LINK_SECRET"] = "explicit-magic"
	cfg, err := parse(mapEnv(m))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(cfg.Auth.MagicSecret) != "explicit-magic" {
		t.Fatalf("magic secret = %q", cfg.Auth.MagicSecret)
	}
}

func TestMissingSecrets(t *testing.T) {
	m := baseEnv()
	delete(m, "APP_SECRET")
	if _, err := parse(mapEnv(m)); err == nil {
		t.Fatalf("parse accepted a config without secrets")
	}
	m["APP_SECRET"] = "short"
	if _, err := parse(mapEnv(m)); err == nil {
		t.Fatalf("parse accepted a short APP_SECRET")
	}
}

func TestProductionDefaultsToSecureCookies(t *testing.T) {
	m := baseEnv()
	m["APP_ENV"] = "production"
	cfg, err := parse(mapEnv(m))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Auth.SecureCookies {
		t.Fatalf("production without secure cookies")
	}
}

func TestFileOverlayLosesToEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := []byte("server:\n  port: \"9090\"\n  client_url: https://rsvp.example\nauth:\n  magic_link_ttl: 5m\nqueue:\n  enabled: true\n")
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := readFile(path)
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	m := baseEnv()
	m["APP_PORT"] = "8081"
	e := mapEnv(m)
	e.file = fc.flatten()

	cfg, err := parse(e)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8081" {
		t.Fatalf("port = %q, want env value 8081", cfg.Port)
	}
	if cfg.ClientURL != "https://rsvp.example" || cfg.Auth.MagicTTL != 5*time.Minute || !cfg.Queue.Enabled {
		t.Fatalf("file values not applied: %q %v %v", cfg.ClientURL, cfg.Auth.MagicTTL, cfg.Queue.Enabled)
	}
}

func TestRateLimitFloors(t *testing.T) {
	rl := loadRateLimitConfig(mapEnv(map[string]string{"RATE_LIMIT_CAPACITY": "0", "RATE_LIMIT_TTL": "1s"}))
	if rl.Capacity != 1 || rl.TTL < 5*rl.RefillInterval {
		t.Fatalf("rate limit = %+v", rl)
	}
}

func TestAdminEmails(t *testing.T) {
	m := baseEnv()
	m["ADMIN_EMAILS"] = " root@example.com, ,ops@example.com "
	cfg, err := parse(mapEnv(m))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "root@example.com" || cfg.AdminEmails[1] != "ops@example.com" {
		t.Fatalf("AdminEmails = %q", cfg.AdminEmails)
	}
}
