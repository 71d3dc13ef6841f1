package docsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn, so documents
// can be read inside a caller's transaction.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor runs compiled queries. The builder itself never touches the
// database; Executor is the thin layer that does.
type Executor struct {
	q      Querier
	logger *zap.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger logs query text and timings at debug level and failures at
// error level. The default logger discards everything.
func WithLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an executor over q.
func NewExecutor(q Querier, opts ...ExecutorOption) *Executor {
	e := &Executor{q: q, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document runs q and returns the document it produces. Queries built with
// AsText and jsonb queries both scan into the same raw JSON.
//
// PostgreSQL errors for missing tables, columns or functions wrap
// ErrSchemaMismatch; every other failure is returned wrapped as-is.
func (e *Executor) Document(ctx context.Context, q Query) (json.RawMessage, error) {
	start := time.Now()
	e.logger.Debug("executing document query",
		zap.String("sql", q.SQL),
		zap.Int("args", len(q.Args)),
	)

	var doc []byte
	err := e.q.QueryRowContext(ctx, q.SQL, q.Args...).Scan(&doc)
	if err != nil {
		err = mapError(err)
		e.logger.Error("document query failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("executing document query: %w", err)
	}

	e.logger.Debug("document query done",
		zap.Int("bytes", len(doc)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return json.RawMessage(doc), nil
}

// DocumentInto runs q and decodes the document into v.
func (e *Executor) DocumentInto(ctx context.Context, q Query, v any) error {
	doc, err := e.Document(ctx, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}

// mapError maps PostgreSQL errors to sentinel errors.
// Uses interface-based detection to work with any PostgreSQL driver (pq, pgx).
func mapError(err error) error {
	switch sqlState(err) {
	case pgUndefinedTable, pgUndefinedColumn, pgUndefinedFunction:
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return err
}

// sqlState extracts the SQLSTATE code from a PostgreSQL error.
// Works with multiple drivers via interface detection:
//   - pgx/pgconn: SQLState() string
//   - lib/pq: Code field, exposed through SQLState() in recent versions
//
// Returns empty string if the error doesn't contain a SQLSTATE.
func sqlState(err error) string {
	type sqlStateErr interface{ SQLState() string }
	var se sqlStateErr
	if errors.As(err, &se) {
		return se.SQLState()
	}

	// Format: "... (SQLSTATE 42P01)"
	errStr := err.Error()
	if idx := strings.Index(errStr, "SQLSTATE "); idx >= 0 {
		start := idx + len("SQLSTATE ")
		if start+5 <= len(errStr) {
			return errStr[start : start+5]
		}
	}
	return ""
}
