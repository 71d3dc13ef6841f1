// Package sqlgen compiles JSON:API document requests into single
// PostgreSQL queries.
//
// # Overview
//
// A request names a root entity and optionally a sparse fieldset per
// resource type, include paths, sorting and a page window. The compiler
// walks the schema graph and emits one query whose only result column is
// the finished document:
//
//	{
//	  "data": [{"id": "1", "type": "articles", "attributes": {...}, "relationships": {...}}],
//	  "included": [{"id": "2", "type": "users", ...}],
//	  "links": {...}
//	}
//
// No post-processing happens in Go. Attribute selection, relationship
// linkage, include resolution with de-duplication, empty/null handling and
// ordering are all expressed in SQL using jsonb_build_object, jsonb_agg and
// correlated subqueries.
//
// # Architecture
//
// The package follows a plan/render split:
//
//  1. Registry: maps resource type names to entities and caches the parsed
//     derived-attribute templates of every reachable entity
//  2. Plan: validates field keys, sort keys and include paths
//     (document_plan.go)
//  3. Render: builds the sqldsl tree for data, included and links
//     (document_render.go, included.go) and renders it
//
// The per-resource pieces live in identifier.go, attributes.go,
// relationships.go and links.go. They are pure functions of the registry
// and a row alias.
//
// # Row Aliases
//
// Attribute and relationship expressions are always built against a row
// alias. Derived attributes are stored bound to the entity's own table and
// moved onto the alias with sqldsl.Rebind, so the same definition works in
// the primary data, in relationship subqueries and in include branches.
//
// # Errors
//
// Request and registration errors are *Error values unwrapping to one of
// ErrIdentityMissing, ErrUnknownModel, ErrUnknownFieldKey, ErrUnknownField
// or ErrInvalidField. Malformed schema definitions found while building a
// Registry wrap schema.ErrInvalidSchema.
package sqlgen
