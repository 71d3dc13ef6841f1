package testutil

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Image is the PostgreSQL image started when no server is configured.
const Image = "postgres:18-alpine"

// ServerURL returns the maintenance URL of an externally managed server, or
// "" when tests should start their own container.
//
// DATABASE_URL wins. Otherwise DATABASE_HOST enables a URL assembled from
// DATABASE_USER, DATABASE_PASSWORD, DATABASE_PORT, DATABASE_NAME and
// DATABASE_SSLMODE. The role must be allowed to CREATE DATABASE.
func ServerURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := os.Getenv("DATABASE_HOST")
	if host == "" {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, envOr("DATABASE_PORT", "5432")),
		Path:   "/" + envOr("DATABASE_NAME", "postgres"),
	}
	user := envOr("DATABASE_USER", "postgres")
	if pw := os.Getenv("DATABASE_PASSWORD"); pw != "" {
		u.User = url.UserPassword(user, pw)
	} else {
		u.User = url.User(user)
	}
	u.RawQuery = url.Values{"sslmode": {envOr("DATABASE_SSLMODE", "prefer")}}.Encode()
	return u.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// startServer returns the configured server URL or starts a container.
// The container is left to ryuk for cleanup.
func startServer() (string, error) {
	if dsn := ServerURL(); dsn != "" {
		return dsn, nil
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, Image,
		postgres.WithDatabase("postgres"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithEnv(map[string]string{"POSTGRES_INITDB_ARGS": "--auth-host=trust"}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return "", fmt.Errorf("start %s: %w", Image, err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", fmt.Errorf("container connection string: %w", err)
	}
	return dsn, nil
}
