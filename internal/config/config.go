package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Sweep     SweepConfig
	CORS      CORSConfig
	NATS      NATSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AIConfig points at the upstream chat-completion gateway.
type AIConfig struct {
	GatewayURL  string
	APIKey      string
	Model       string
	Temperature float64
}

// RateLimitConfig controls the per-IP fixed hourly window and the optional
// Redis burst limiter in front of it.
type RateLimitConfig struct {
	MaxRequests  int
	Window       time.Duration
	BurstEnabled bool
	BurstMax     int
	BurstWindow  time.Duration
}

// SweepConfig controls the periodic deletion of stale rate-limit rows.
type SweepConfig struct {
	Schedule  string
	Retention time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type NATSConfig struct {
	URL string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		AI: AIConfig{
			GatewayURL:  k.String("ai.gateway.url"),
			APIKey:      k.String("ai.api.key"),
			Model:       k.String("ai.model"),
			Temperature: k.Float64("ai.temperature"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:  k.Int("ratelimit.max.requests"),
			BurstEnabled: k.Bool("ratelimit.burst.enabled"),
			BurstMax:     k.Int("ratelimit.burst.max"),
		},
		Sweep: SweepConfig{
			Schedule: k.String("sweep.schedule"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "immolink"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "immolink"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.AI.GatewayURL == "" {
		cfg.AI.GatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "google/gemini-2.5-flash"
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 20
	}
	if cfg.RateLimit.BurstMax == 0 {
		cfg.RateLimit.BurstMax = 5
	}
	if cfg.Sweep.Schedule == "" {
		cfg.Sweep.Schedule = "@hourly"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	// Parse durations
	windowStr := k.String("ratelimit.window")
	if windowStr == "" {
		windowStr = "1h"
	}
	cfg.RateLimit.Window, err = time.ParseDuration(windowStr)
	if err != nil {
		return nil, fmt.Errorf("parsing rate limit window: %w", err)
	}

	burstWindowStr := k.String("ratelimit.burst.window")
	if burstWindowStr == "" {
		burstWindowStr = "1m"
	}
	cfg.RateLimit.BurstWindow, err = time.ParseDuration(burstWindowStr)
	if err != nil {
		return nil, fmt.Errorf("parsing burst window: %w", err)
	}

	retentionStr := k.String("sweep.retention")
	if retentionStr == "" {
		retentionStr = "24h"
	}
	cfg.Sweep.Retention, err = time.ParseDuration(retentionStr)
	if err != nil {
		return nil, fmt.Errorf("parsing sweep retention: %w", err)
	}

	return cfg, nil
}
