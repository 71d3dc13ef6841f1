package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Tags are the tag names of the fixture dataset. Their ids are derived
// with TagID.
var Tags = []string{"go", "postgres", "json"}

// ArticleTags maps fixture article ids to tag names.
var ArticleTags = map[int][]string{
	1: {"go", "postgres"},
	3: {"json"},
}

// tagNamespace scopes the name-based tag UUIDs.
var tagNamespace = uuid.MustParse("6f1c1a56-3f0e-4c1b-9a59-5c1e2b7d9f10")

// TagID returns the deterministic id of the fixture tag with the given name.
func TagID(name string) uuid.UUID {
	return uuid.NewSHA1(tagNamespace, []byte(name))
}

// Fixtures loads test data that the SQL fixture file cannot express.
type Fixtures struct {
	db  *sql.DB
	ctx context.Context
}

// NewFixtures creates a new Fixtures instance.
func NewFixtures(ctx context.Context, db *sql.DB) *Fixtures {
	return &Fixtures{db: db, ctx: ctx}
}

// CopyTags inserts the named tags and their article links using
// PostgreSQL COPY FROM.
func (f *Fixtures) CopyTags(names []string, articleTags map[int][]string) error {
	tagRows := make([][]any, len(names))
	for i, name := range names {
		tagRows[i] = []any{TagID(name), name}
	}

	var linkRows [][]any
	for articleID, tags := range articleTags {
		for _, name := range tags {
			linkRows = append(linkRows, []any{articleID, TagID(name)})
		}
	}

	return f.withPgxConn(func(conn *pgx.Conn) error {
		if _, err := conn.CopyFrom(f.ctx, pgx.Identifier{"tags"}, []string{"id", "name"}, pgx.CopyFromRows(tagRows)); err != nil {
			return fmt.Errorf("COPY tags: %w", err)
		}
		if _, err := conn.CopyFrom(f.ctx, pgx.Identifier{"article_tags"}, []string{"article_id", "tag_id"}, pgx.CopyFromRows(linkRows)); err != nil {
			return fmt.Errorf("COPY article_tags: %w", err)
		}
		return nil
	})
}

// withPgxConn runs fn with the pgx connection underneath a database/sql
// connection.
func (f *Fixtures) withPgxConn(fn func(*pgx.Conn) error) error {
	conn, err := f.db.Conn(f.ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		stdlibConn, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("not a pgx connection (got %T)", driverConn)
		}
		return fn(stdlibConn.Conn())
	})
}
