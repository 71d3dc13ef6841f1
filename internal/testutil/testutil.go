// Package testutil provides shared test utilities for docsql integration tests.
//
// Tests call DB to get a private database holding the blog tables and the
// fixture dataset. The first call starts (or connects to) a PostgreSQL
// server and builds a template database; every later call clones the
// template, which takes a few milliseconds.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
)

var (
	//go:embed testdata/schema.sql
	schemaSQL string

	//go:embed testdata/fixtures.sql
	fixturesSQL string
)

// lazy memoizes a value computed at most once per test binary.
type lazy struct {
	once sync.Once
	val  string
	err  error
}

func (l *lazy) get(fn func() (string, error)) (string, error) {
	l.once.Do(func() { l.val, l.err = fn() })
	return l.val, l.err
}

var (
	server   lazy
	template lazy
)

// DB returns a connection to a fresh database holding the fixture dataset.
// The database is dropped when the test completes. Integration tests are
// skipped with -short.
func DB(tb testing.TB) *sql.DB {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping integration test in short mode")
	}

	adminDSN, err := server.get(startServer)
	require.NoError(tb, err, "PostgreSQL unavailable")

	tmpl, err := template.get(func() (string, error) { return buildTemplate(adminDSN) })
	require.NoError(tb, err, "building template database")

	name := randomName("docsql_test")
	require.NoError(tb, adminExec(context.Background(), adminDSN,
		fmt.Sprintf("CREATE DATABASE %s TEMPLATE %s", ident(name), ident(tmpl))))

	db, err := sql.Open("pgx", replaceDBName(adminDSN, name))
	require.NoError(tb, err)
	require.NoError(tb, db.Ping(), "connecting to %s", name)

	tb.Cleanup(func() {
		_ = db.Close()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = adminExec(ctx, adminDSN, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", ident(name)))
		}()
	})
	return db
}

// buildTemplate creates the template database and loads the dataset into it.
func buildTemplate(adminDSN string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	name := randomName("docsql_template")
	if err := adminExec(ctx, adminDSN, "CREATE DATABASE "+ident(name)); err != nil {
		return "", err
	}

	db, err := sql.Open("pgx", replaceDBName(adminDSN, name))
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return "", fmt.Errorf("create tables: %w", err)
	}
	if _, err := db.ExecContext(ctx, fixturesSQL); err != nil {
		return "", fmt.Errorf("insert fixtures: %w", err)
	}
	if err := NewFixtures(ctx, db).CopyTags(Tags, ArticleTags); err != nil {
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", err
	}

	// Non-fatal: cloning works without the flag.
	_ = adminExec(ctx, adminDSN, fmt.Sprintf("ALTER DATABASE %s WITH is_template = true", ident(name)))
	return name, nil
}

// adminExec runs statements on a short-lived maintenance connection.
func adminExec(ctx context.Context, adminDSN string, stmts ...string) error {
	conn, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	for _, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func randomName(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return prefix + "_" + hex.EncodeToString(b)
}

// replaceDBName points a postgres:// URL at another database, keeping the
// credentials and query parameters.
func replaceDBName(dsn, db string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	u.Path = "/" + db
	return u.String()
}

// SchemaSQL returns the DDL of the blog tables.
func SchemaSQL() string {
	return schemaSQL
}
