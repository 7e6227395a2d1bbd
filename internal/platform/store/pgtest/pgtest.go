//go:build integration

// Package pgtest starts a throwaway Postgres for integration tests
package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"djnic/internal/platform/store"
	"djnic/internal/platform/store/migrate"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once    sync.Once
	dsn     string
	initErr error
)

// Open returns a migrated store backed by a container shared across the test binary.
// Every table is truncated before it is handed out.
func Open(t *testing.T) *store.Store {
	t.Helper()
	once.Do(func() { dsn, initErr = start() })
	if initErr != nil {
		t.Fatalf("pgtest: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4}})
	if err != nil {
		t.Fatalf("pgtest: open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, `TRUNCATE zones, registrants, domains, dns_hosts, users, events,
		subscription_targets, telegram_messages, job_leases RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("pgtest: truncate: %v", err)
	}
	return st
}

func start() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "djnic",
				"POSTGRES_PASSWORD": "djnic",
				"POSTGRES_DB":       "djnic",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("postgres://djnic:djnic@%s:%s/djnic?sslmode=disable", host, port.Port())

	db, err := sql.Open("pgx", url)
	if err != nil {
		return "", err
	}
	defer db.Close()

	r, err := migrate.New(db)
	if err != nil {
		return "", err
	}
	if _, err := r.Up(ctx); err != nil {
		return "", err
	}
	return url, nil
}
