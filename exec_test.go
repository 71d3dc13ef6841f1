package docsql_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pthm/docsql"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestExecutorDocument(t *testing.T) {
	db, mock := setupMockDB(t)
	q := docsql.Query{SQL: "SELECT doc", Args: []any{1, "a"}}

	mock.ExpectQuery("SELECT doc").
		WithArgs(1, "a").
		WillReturnRows(sqlmock.NewRows([]string{docsql.DocumentColumn}).
			AddRow(`{"data": []}`))

	core, logs := observer.New(zapcore.DebugLevel)
	doc, err := docsql.NewExecutor(db, docsql.WithLogger(zap.New(core))).Document(context.Background(), q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": []}`, string(doc))

	entries := logs.FilterMessage("executing document query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SELECT doc", entries[0].ContextMap()["sql"])
	assert.Equal(t, 1, logs.FilterMessage("document query done").Len())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorDocumentInto(t *testing.T) {
	db, mock := setupMockDB(t)
	q := docsql.Query{SQL: "SELECT doc"}

	mock.ExpectQuery("SELECT doc").
		WillReturnRows(sqlmock.NewRows([]string{docsql.DocumentColumn}).
			AddRow(`{"data": {"id": "1", "type": "articles"}}`))

	var doc struct {
		Data struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"data"`
	}
	err := docsql.NewExecutor(db).DocumentInto(context.Background(), q, &doc)
	require.NoError(t, err)
	assert.Equal(t, "1", doc.Data.ID)
	assert.Equal(t, "articles", doc.Data.Type)
}

func TestExecutorErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		mismatch bool
	}{
		{
			name:     "pgx undefined table",
			err:      &pgconn.PgError{Code: "42P01", Message: `relation "articles" does not exist`},
			mismatch: true,
		},
		{
			name:     "pgx undefined column",
			err:      &pgconn.PgError{Code: "42703", Message: `column src._id does not exist`},
			mismatch: true,
		},
		{
			name:     "sqlstate in message",
			err:      errors.New(`ERROR: function upper(integer) does not exist (SQLSTATE 42883)`),
			mismatch: true,
		},
		{
			name:     "syntax error",
			err:      &pgconn.PgError{Code: "42601", Message: "syntax error"},
			mismatch: false,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp: connection refused"),
			mismatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery("SELECT doc").WillReturnError(tt.err)

			core, logs := observer.New(zapcore.ErrorLevel)
			_, err := docsql.NewExecutor(db, docsql.WithLogger(zap.New(core))).
				Document(context.Background(), docsql.Query{SQL: "SELECT doc"})
			require.Error(t, err)

			assert.ErrorContains(t, err, "executing document query")
			assert.Equal(t, tt.mismatch, docsql.IsSchemaMismatchErr(err), "error = %v", err)
			assert.Equal(t, 1, logs.FilterMessage("document query failed").Len())
		})
	}
}

func TestExecutorNilLoggerKeepsDefault(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT doc").
		WillReturnRows(sqlmock.NewRows([]string{docsql.DocumentColumn}).AddRow(`null`))

	doc, err := docsql.NewExecutor(db, docsql.WithLogger(nil)).Document(context.Background(), docsql.Query{SQL: "SELECT doc"})
	require.NoError(t, err)
	assert.Equal(t, "null", string(doc))
}
