package docsql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/docsql"
)

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
		is       func(error) bool
		client   bool
	}{
		{"IsIdentityMissingErr", docsql.ErrIdentityMissing, docsql.IsIdentityMissingErr, false},
		{"IsUnknownModelErr", docsql.ErrUnknownModel, docsql.IsUnknownModelErr, false},
		{"IsUnknownFieldKeyErr", docsql.ErrUnknownFieldKey, docsql.IsUnknownFieldKeyErr, true},
		{"IsUnknownFieldErr", docsql.ErrUnknownField, docsql.IsUnknownFieldErr, true},
		{"IsInvalidFieldErr", docsql.ErrInvalidField, docsql.IsInvalidFieldErr, true},
		{"IsInvalidQueryErr", docsql.ErrInvalidQuery, docsql.IsInvalidQueryErr, true},
		{"IsSchemaMismatchErr", docsql.ErrSchemaMismatch, docsql.IsSchemaMismatchErr, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", tt.sentinel)
			if !tt.is(err) {
				t.Errorf("%s should return true for wrapped sentinel", tt.name)
			}
			if tt.is(errors.New("other error")) {
				t.Errorf("%s should return false for other errors", tt.name)
			}
			if got := docsql.IsClientErr(err); got != tt.client {
				t.Errorf("IsClientErr() = %v, want %v", got, tt.client)
			}
		})
	}
}

func TestCompileErrorsUnwrap(t *testing.T) {
	qb := newBlogBuilder(t)

	_, err := qb.Select("Article", docsql.Request{Fields: map[string][]string{"articles": {"bogus"}}})
	if !docsql.IsUnknownFieldErr(err) {
		t.Fatalf("error = %v, want ErrUnknownField", err)
	}

	var compileErr *docsql.Error
	if !errors.As(err, &compileErr) {
		t.Fatalf("error %T is not a *docsql.Error", err)
	}
	if len(compileErr.Names) == 0 || compileErr.Names[0] != "bogus" {
		t.Errorf("Names = %v, want [bogus]", compileErr.Names)
	}
}
