package config

import "time"

// RateLimitConfig controls the Redis token-bucket limiter.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int // bucket size, i.e. the burst allowance
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration // how long idle buckets live in Redis
	KeyStrategy    string        // "ip", "user" or "ip_user_route"
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables and clamps the
// result so the limiter always has a workable bucket.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if min := 5 * c.RefillInterval; c.TTL < min {
		c.TTL = min
	}
	return c
}
