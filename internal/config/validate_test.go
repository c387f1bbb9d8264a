package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "immolink",
			Password: "secret", Name: "immolink", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		AI: AIConfig{
			GatewayURL:  "https://ai.gateway.lovable.dev/v1/chat/completions",
			APIKey:      "test-key",
			Model:       "google/gemini-2.5-flash",
			Temperature: 0.7,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 20,
			Window:      time.Hour,
			BurstMax:    5,
			BurstWindow: time.Minute,
		},
		Sweep: SweepConfig{Schedule: "@hourly", Retention: 24 * time.Hour},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_APIKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AI_API_KEY is required") {
		t.Fatalf("expected AI_API_KEY required error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_TemperatureOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Temperature = 3.5
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AI_TEMPERATURE") {
		t.Fatalf("expected AI_TEMPERATURE error, got: %v", err)
	}
}

func TestValidate_MaxRequestsPositive(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.MaxRequests = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "RATELIMIT_MAX_REQUESTS") {
		t.Fatalf("expected RATELIMIT_MAX_REQUESTS error, got: %v", err)
	}
}

func TestValidate_BurstMaxWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.BurstEnabled = true
	cfg.RateLimit.BurstMax = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "RATELIMIT_BURST_MAX") {
		t.Fatalf("expected RATELIMIT_BURST_MAX error, got: %v", err)
	}
}

func TestValidate_RetentionShorterThanWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Sweep.Retention = 30 * time.Minute
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SWEEP_RETENTION") {
		t.Fatalf("expected SWEEP_RETENTION error, got: %v", err)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = ""
	cfg.DB.Password = ""
	cfg.Server.Port = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"AI_API_KEY", "DB_PASSWORD", "SERVER_PORT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got: %v", want, err)
		}
	}
}
