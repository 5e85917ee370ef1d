package config

import "time"

// RateLimitConfig tunes the Redis token bucket that guards the sign-in
// endpoint.  The defaults allow a short burst of link requests per client
// and then one per refill interval.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func loadRateLimitConfig(e env) RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        e.boolean("RATE_LIMIT_ENABLED", true),
		Capacity:       e.integer("RATE_LIMIT_CAPACITY", 5),
		RefillTokens:   e.integer("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: e.duration("RATE_LIMIT_REFILL_INTERVAL", time.Minute),
		TTL:            e.duration("RATE_LIMIT_TTL", 30*time.Minute),
		KeyStrategy:    e.str("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         e.str("RATE_LIMIT_PREFIX", "rl"),
		Debug:          e.boolean("RATE_LIMIT_DEBUG", false),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Minute
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

// CacheConfig defines settings for the public event response cache.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  TTL defines the lifetime of cache entries and MaxBodyBytes
// the largest response that is stored.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

func loadCacheConfig(e env) CacheConfig {
	return CacheConfig{
		Enabled:      e.boolean("CACHE_ENABLED", true),
		TTL:          e.duration("CACHE_TTL", 30*time.Second),
		Prefix:       e.str("CACHE_PREFIX", "cache"),
		MaxBodyBytes: e.integer("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// MailConfig holds the MailerSend credentials.  Without an API key the dev
// mailer logs messages instead of sending them.
type MailConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// QueueConfig controls the RabbitMQ mail pipeline.  When disabled, mail is
// delivered in-process.
type QueueConfig struct {
	Enabled   bool
	URL       string
	MailQueue string
}
