//go:build integration

package integration

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/immolinksenegal/chat-gateway/internal/api"
	"github.com/immolinksenegal/chat-gateway/internal/chat"
	"github.com/immolinksenegal/chat-gateway/internal/config"
	"github.com/immolinksenegal/chat-gateway/internal/llm"
	"github.com/immolinksenegal/chat-gateway/internal/ratelimit"
)

type TestEnv struct {
	Pool    *pgxpool.Pool
	Repo    *ratelimit.Repository
	Server  *httptest.Server
	Gateway *httptest.Server
}

var testEnv *TestEnv

// SetupTestEnv starts a PostgreSQL container, runs migrations and wires the
// full router against a fake upstream gateway that streams a canned SSE
// completion. The environment is shared across tests in the package.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "chatgw_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/chatgw_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	m, err := migrate.New(fmt.Sprintf("file://%s", getMigrationsPath()), dsn)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("running migrations: %v", err)
	}

	// Fake upstream gateway: always streams the same short completion.
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Bonjour\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(gateway.Close)

	repo := ratelimit.NewRepository(pool)
	limiter := ratelimit.NewLimiter(repo, nil, config.RateLimitConfig{
		MaxRequests: 20,
		Window:      time.Hour,
	})

	completer := llm.NewClient(config.AIConfig{
		GatewayURL:  gateway.URL,
		APIKey:      "test-key",
		Model:       "google/gemini-2.5-flash",
		Temperature: 0.7,
	})
	chatHandler := chat.NewHandler(limiter, completer, nil)

	router := api.NewRouter(pool, nil, api.RouterConfig{
		CORSAllowedOrigins: []string{"*"},
	}, api.HandlerSet{
		ChatCompletion: chatHandler.Completion,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	testEnv = &TestEnv{
		Pool:    pool,
		Repo:    repo,
		Server:  server,
		Gateway: gateway,
	}

	return testEnv
}

func getMigrationsPath() string {
	paths := []string{
		"../../migrations",
		"../../../migrations",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Fatal("migrations directory not found")
	return ""
}

// ResetRateLimits clears the rate_limits table between tests.
func ResetRateLimits(t *testing.T, env *TestEnv) {
	t.Helper()
	if _, err := env.Pool.Exec(context.Background(), "TRUNCATE rate_limits"); err != nil {
		t.Fatalf("truncating rate_limits: %v", err)
	}
}

// BackdateWindow moves an IP's window_start into the past to simulate an
// expired window without sleeping.
func BackdateWindow(t *testing.T, env *TestEnv, ip string, age time.Duration) {
	t.Helper()
	_, err := env.Pool.Exec(context.Background(),
		"UPDATE rate_limits SET window_start = NOW() - make_interval(secs => $2) WHERE ip_address = $1",
		ip, age.Seconds())
	if err != nil {
		t.Fatalf("backdating window: %v", err)
	}
}
