package docsql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/docsql"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected docsql.Request
	}{
		{
			name:     "empty",
			query:    "",
			expected: docsql.Request{},
		},
		{
			name:  "include",
			query: "include=author,comments.author",
			expected: docsql.Request{
				Include: []string{"author", "comments.author"},
			},
		},
		{
			name:     "empty include is not nil",
			query:    "include=",
			expected: docsql.Request{Include: []string{}},
		},
		{
			name:  "include trims whitespace and blanks",
			query: "include=author,%20,%20comments%20,,",
			expected: docsql.Request{
				Include: []string{"author", "comments"},
			},
		},
		{
			name:  "fields",
			query: "fields[articles]=name,author&fields[users]=",
			expected: docsql.Request{
				Fields: map[string][]string{
					"articles": {"name", "author"},
					"users":    {},
				},
			},
		},
		{
			name:  "hyphenated type",
			query: "fields%5Bleague-invitations%5D=status",
			expected: docsql.Request{
				Fields: map[string][]string{"league-invitations": {"status"}},
			},
		},
		{
			name:     "sort",
			query:    "sort=-created_at,name",
			expected: docsql.Request{Sort: []string{"-created_at", "name"}},
		},
		{
			name:     "page",
			query:    "page[limit]=10&page[offset]=20",
			expected: docsql.Request{Limit: 10, Offset: 20},
		},
		{
			name:     "unknown parameters ignored",
			query:    "filter[name]=x&page[size]=3&foo=bar",
			expected: docsql.Request{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := docsql.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestParseQueryErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad escape", "include=%zz"},
		{"non-numeric limit", "page[limit]=ten"},
		{"negative offset", "page[offset]=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := docsql.ParseQuery(tt.query)
			require.Error(t, err)
			assert.True(t, docsql.IsInvalidQueryErr(err), "error = %v", err)
		})
	}
}
