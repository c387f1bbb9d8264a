package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/immolinksenegal/chat-gateway/internal/api"
	"github.com/immolinksenegal/chat-gateway/internal/chat"
	"github.com/immolinksenegal/chat-gateway/internal/config"
	"github.com/immolinksenegal/chat-gateway/internal/database"
	"github.com/immolinksenegal/chat-gateway/internal/events"
	"github.com/immolinksenegal/chat-gateway/internal/llm"
	"github.com/immolinksenegal/chat-gateway/internal/ratelimit"
	"github.com/immolinksenegal/chat-gateway/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.DB.MigrationsPath != "" {
		if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}
	}

	// Rate limiting: Postgres fixed window, plus an optional Redis burst
	// limiter in front of it.
	repo := ratelimit.NewRepository(pool)

	var burst *ratelimit.BurstLimiter
	if cfg.RateLimit.BurstEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		burst = ratelimit.NewBurstLimiter(rdb, cfg.RateLimit.BurstMax, cfg.RateLimit.BurstWindow)
	}

	limiter := ratelimit.NewLimiter(repo, burst, cfg.RateLimit)

	sweeper := ratelimit.NewSweeper(repo, cfg.Sweep)
	if err := sweeper.Start(ctx); err != nil {
		slog.Error("starting rate limit sweeper", "error", err)
		os.Exit(1)
	}

	// NATS is optional: without it the gateway runs, analytics events are
	// simply not published.
	var natsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = events.NewPublisher(natsClient.JetStream())
	}

	// Upstream gateway client and chat handler
	completer := llm.NewClient(cfg.AI)
	chatHandler := chat.NewHandler(limiter, completer, publisher)

	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
	}, api.HandlerSet{
		ChatCompletion: chatHandler.Completion,
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
