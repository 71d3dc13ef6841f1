package sqldsl

import (
	"strings"

	"github.com/lib/pq"
)

// reservedIdents are PostgreSQL reserved words that commonly show up as
// table or column names and must always be quoted.
var reservedIdents = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "case": true, "cast": true,
	"check": true, "collate": true, "column": true, "constraint": true,
	"create": true, "default": true, "desc": true, "distinct": true,
	"do": true, "else": true, "end": true, "except": true, "false": true,
	"for": true, "foreign": true, "from": true, "grant": true, "group": true,
	"having": true, "in": true, "limit": true, "not": true, "null": true,
	"offset": true, "on": true, "only": true, "or": true, "order": true,
	"primary": true, "references": true, "select": true, "table": true,
	"then": true, "to": true, "true": true, "union": true, "unique": true,
	"user": true, "using": true, "when": true, "where": true, "with": true,
}

// QuoteIdent returns name unchanged when it is a plain lower-case
// identifier and a double-quoted identifier otherwise.
func QuoteIdent(name string) string {
	if isPlainIdent(name) && !reservedIdents[name] {
		return name
	}
	return pq.QuoteIdentifier(name)
}

// QuoteTable quotes a possibly schema-qualified relation name part by
// part, so blog.articles renders as blog.articles and not "blog.articles".
// Case is kept: MixedCase becomes "MixedCase".
func QuoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// ValidTableName reports whether name is one or two non-empty
// dot-separated parts, the forms QuoteTable accepts.
func ValidTableName(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// QuoteLiteral renders s as a single-quoted string literal. Strings
// containing backslashes use the E'' form.
func QuoteLiteral(s string) string {
	return pq.QuoteLiteral(s)
}

func isPlainIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
