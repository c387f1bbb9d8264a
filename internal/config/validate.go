package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks Config for problems that must stop startup.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// The gateway credential is required before any traffic is accepted.
	if c.AI.APIKey == "" {
		errs = append(errs, "AI_API_KEY is required")
	}
	if c.AI.GatewayURL == "" {
		errs = append(errs, "AI_GATEWAY_URL must not be empty")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("AI_TEMPERATURE must be 0–2, got %g", c.AI.Temperature))
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Rate limiting
	if c.RateLimit.MaxRequests < 1 {
		errs = append(errs, fmt.Sprintf("RATELIMIT_MAX_REQUESTS must be >= 1, got %d", c.RateLimit.MaxRequests))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, "RATELIMIT_WINDOW must be positive")
	}
	if c.RateLimit.BurstEnabled && c.RateLimit.BurstMax < 1 {
		errs = append(errs, fmt.Sprintf("RATELIMIT_BURST_MAX must be >= 1, got %d", c.RateLimit.BurstMax))
	}

	if c.Sweep.Retention < c.RateLimit.Window {
		errs = append(errs, "SWEEP_RETENTION must not be shorter than the rate limit window")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
