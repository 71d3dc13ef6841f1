package docsql

import (
	"errors"

	"github.com/pthm/docsql/internal/sqlgen"
)

// Sentinel errors for failures while compiling a request. Every compile
// error is an *Error whose Kind is one of the first five sentinels, so
// callers can map them to responses with errors.Is:
//
//	_, err := qb.Select("Article", req)
//	if docsql.IsUnknownFieldErr(err) || docsql.IsInvalidFieldErr(err) {
//		// 400 Bad Request
//	}
var (
	// ErrIdentityMissing is returned when a registered entity has no
	// identity attribute. It surfaces from NewRegistry.
	ErrIdentityMissing = sqlgen.ErrIdentityMissing

	// ErrUnknownModel is returned for entities that are not registered.
	ErrUnknownModel = sqlgen.ErrUnknownModel

	// ErrUnknownFieldKey is returned when Request.Fields names resource
	// types that are not registered.
	ErrUnknownFieldKey = sqlgen.ErrUnknownFieldKey

	// ErrUnknownField is returned when a field, sort key or include path
	// names something the entity does not have.
	ErrUnknownField = sqlgen.ErrUnknownField

	// ErrInvalidField is returned for names that exist but may not be
	// selected: reserved keywords, key columns, relationship sort keys.
	ErrInvalidField = sqlgen.ErrInvalidField

	// ErrInvalidQuery is returned by ParseQuery for malformed parameters.
	ErrInvalidQuery = errors.New("docsql: invalid query parameters")

	// ErrSchemaMismatch is returned by the Executor when PostgreSQL rejects
	// a compiled query because a table, column or function named by the
	// schema graph does not exist.
	ErrSchemaMismatch = errors.New("docsql: database does not match schema")
)

// Error is a compile failure. Kind is one of the sentinels above and Names
// lists the offending names.
type Error = sqlgen.Error

// IsIdentityMissingErr returns true if err is or wraps ErrIdentityMissing.
func IsIdentityMissingErr(err error) bool {
	return errors.Is(err, ErrIdentityMissing)
}

// IsUnknownModelErr returns true if err is or wraps ErrUnknownModel.
func IsUnknownModelErr(err error) bool {
	return errors.Is(err, ErrUnknownModel)
}

// IsUnknownFieldKeyErr returns true if err is or wraps ErrUnknownFieldKey.
func IsUnknownFieldKeyErr(err error) bool {
	return errors.Is(err, ErrUnknownFieldKey)
}

// IsUnknownFieldErr returns true if err is or wraps ErrUnknownField.
func IsUnknownFieldErr(err error) bool {
	return errors.Is(err, ErrUnknownField)
}

// IsInvalidFieldErr returns true if err is or wraps ErrInvalidField.
func IsInvalidFieldErr(err error) bool {
	return errors.Is(err, ErrInvalidField)
}

// IsInvalidQueryErr returns true if err is or wraps ErrInvalidQuery.
func IsInvalidQueryErr(err error) bool {
	return errors.Is(err, ErrInvalidQuery)
}

// IsSchemaMismatchErr returns true if err is or wraps ErrSchemaMismatch.
func IsSchemaMismatchErr(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsClientErr reports whether err was caused by the request rather than
// the schema or the database. HTTP layers answer these with 400.
func IsClientErr(err error) bool {
	return IsUnknownFieldKeyErr(err) || IsUnknownFieldErr(err) ||
		IsInvalidFieldErr(err) || IsInvalidQueryErr(err)
}

// PostgreSQL error codes mapped to ErrSchemaMismatch.
const (
	pgUndefinedTable    = "42P01" // undefined_table
	pgUndefinedColumn   = "42703" // undefined_column
	pgUndefinedFunction = "42883" // undefined_function
)
