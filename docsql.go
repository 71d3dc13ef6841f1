// Package docsql compiles JSON:API document requests into single PostgreSQL
// queries.
//
// The compiled query returns one row with one column holding the complete
// document: primary data, the de-duplicated included set and top-level
// links. Attribute selection, relationship linkage, include resolution,
// ordering and paging all happen inside PostgreSQL, so the caller only
// forwards the resulting JSON.
//
// # Module Structure
//
//   - github.com/pthm/docsql: QueryBuilder, Request, errors, Executor and
//     query-string parsing.
//   - github.com/pthm/docsql/schema: the entity graph consumed by the
//     builder and the YAML schema file format.
//
// # Basic Usage
//
//	f, _ := schema.LoadFile("schema.yaml")
//	reg, _ := docsql.RegistryFromFile(f)
//	qb, _ := docsql.NewQueryBuilder(reg, docsql.WithBaseURL("https://api.example.com/"))
//
//	q, err := qb.Select("Article", docsql.Request{
//		Fields:  map[string][]string{"articles": {"name", "author"}},
//		Include: []string{"author"},
//		Sort:    []string{"-name"},
//		Limit:   10,
//	})
//	doc, err := docsql.NewExecutor(db).Document(ctx, q)
//
// Entities are addressed by entity name; resource type names appear in the
// request's Fields keys and in the emitted document. Registry.EntityOf maps
// a type name from a URL back to its entity.
//
// # Concurrency
//
// A Registry and a QueryBuilder are immutable after construction and safe
// for concurrent use. Building a query performs no I/O.
package docsql

import (
	"github.com/pthm/docsql/internal/sqlgen"
	"github.com/pthm/docsql/schema"
)

// Registry maps resource type names to entities of a schema graph.
type Registry = sqlgen.Registry

// Request describes the document to build. See the field documentation for
// the meaning of nil versus empty selections.
type Request = sqlgen.Request

// Query is a compiled document query: one SQL statement and its arguments.
type Query = sqlgen.Query

// DocumentColumn is the name of the single column a Query returns.
const DocumentColumn = sqlgen.DocumentColumn

// NewRegistry registers the given type name -> entity name mapping over
// graph. Entities reachable through relationships are compiled as well, so
// a registry is fully validated once this returns.
func NewRegistry(graph schema.Graph, types map[string]string) (*Registry, error) {
	return sqlgen.NewRegistry(graph, types)
}

// RegistryFromFile validates a loaded schema file and registers its types.
func RegistryFromFile(f *schema.File) (*Registry, error) {
	m, err := f.Model()
	if err != nil {
		return nil, err
	}
	return NewRegistry(m, f.TypeMap())
}

// QueryBuilder compiles requests against a Registry.
type QueryBuilder struct {
	reg        *Registry
	opts       sqlgen.Options
	formatters []pendingFormatter
}

type pendingFormatter struct {
	typ      string
	template string
}

// Option configures a QueryBuilder.
type Option func(*QueryBuilder)

// WithBaseURL enables self and related links, prefixed with url. The URL
// is used as given; include the trailing slash.
func WithBaseURL(url string) Option {
	return func(b *QueryBuilder) {
		b.opts.BaseURL = url
	}
}

// WithTypeFormatter wraps every attribute value whose declared type is typ
// in template, an SQL expression with a {value} placeholder:
//
//	docsql.WithTypeFormatter("timestamptz", `to_char({value}, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')`)
//
// Formatters are tried in registration order and the first match wins.
func WithTypeFormatter(typ, template string) Option {
	return func(b *QueryBuilder) {
		b.formatters = append(b.formatters, pendingFormatter{typ: typ, template: template})
	}
}

// WithLenientKeywords reserves only id and type as attribute names. By
// default every JSON:API resource object member name is reserved.
func WithLenientKeywords() Option {
	return func(b *QueryBuilder) {
		b.opts.LenientKeywords = true
	}
}

// WithEmptyIncluded emits "included": [] when a request passes an empty,
// non-nil Include list. Without it the member is omitted.
func WithEmptyIncluded(enabled bool) Option {
	return func(b *QueryBuilder) {
		b.opts.EmptyIncluded = enabled
	}
}

// NewQueryBuilder creates a builder over reg. It fails only when a
// formatter template cannot be parsed.
func NewQueryBuilder(reg *Registry, opts ...Option) (*QueryBuilder, error) {
	b := &QueryBuilder{reg: reg}
	for _, opt := range opts {
		opt(b)
	}
	for _, pf := range b.formatters {
		f, err := sqlgen.NewFormatter(pf.typ, pf.template)
		if err != nil {
			return nil, err
		}
		b.opts.Formatters = append(b.opts.Formatters, f)
	}
	return b, nil
}

// Registry returns the registry the builder compiles against.
func (b *QueryBuilder) Registry() *Registry {
	return b.reg
}

// Select builds a collection document for entity: data is an array of
// resource objects, empty when no rows match.
func (b *QueryBuilder) Select(entity string, req Request) (Query, error) {
	return sqlgen.BuildSelect(b.reg, b.opts, entity, req)
}

// SelectOne builds a single-resource document for the row of entity whose
// identity equals id. data is null when there is no such row. id is passed
// as the last query argument.
func (b *QueryBuilder) SelectOne(entity string, id any, req Request) (Query, error) {
	return sqlgen.BuildSelectOne(b.reg, b.opts, entity, id, req)
}

// SelectRelated builds a document whose primary data is the target of
// relationship on the entity row identified by id: an array for to-many
// relationships, an object or null for to-one. Fields and sort apply to the
// target type.
func (b *QueryBuilder) SelectRelated(entity string, id any, relationship string, req Request) (Query, error) {
	return sqlgen.BuildRelated(b.reg, b.opts, entity, id, relationship, req)
}

// SelectRelationship builds a relationship document: the resource
// identifiers of relationship on the entity row identified by id.
func (b *QueryBuilder) SelectRelationship(entity string, id any, relationship string, req Request) (Query, error) {
	return sqlgen.BuildRelationship(b.reg, b.opts, entity, id, relationship, req)
}
