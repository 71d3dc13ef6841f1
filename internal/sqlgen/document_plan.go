package sqlgen

import (
	"fmt"

	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
	"github.com/pthm/docsql/schema"
)

// =============================================================================
// Document Plan Layer
// =============================================================================
//
// Building a document runs in two layers:
// - Plan: validate the request against the registry and resolve names
// - Render: build the sqldsl tree and render it (document_render.go)
//
// Every request-level error surfaces from the plan layer, so a request is
// either fully valid or produces no SQL at all.

// Options configures document compilation. The zero value is usable.
type Options struct {
	// BaseURL prefixes self and related links. Links are omitted when empty.
	BaseURL string
	// Formatters wrap attribute values by declared type. The first match wins.
	Formatters []Formatter
	// LenientKeywords reserves only id and type as attribute names instead
	// of every JSON:API resource object member.
	LenientKeywords bool
	// EmptyIncluded emits "included": [] for a non-nil, empty Include list.
	EmptyIncluded bool
}

// Request describes the document to build.
type Request struct {
	// Fields maps resource type names to the attributes and relationships
	// to emit. A missing type means everything eligible; an empty list
	// means identifiers only.
	Fields map[string][]string
	// Include lists dot-separated relationship paths. Nil omits the
	// included member.
	Include []string
	// Sort lists attribute names, "-" prefixed for descending order.
	Sort []string
	// Limit and Offset bound the primary rows. Values <= 0 are ignored.
	Limit  int
	Offset int
	// Links is emitted verbatim as the top-level links member.
	Links map[string]string
	// From replaces the entity table as the row source. It must select the
	// entity's columns. $n placeholders refer to Args.
	From string
	Args []any
	// AsText casts the document to text instead of jsonb.
	AsText bool
	// IDsOnly emits bare resource identifiers as primary data.
	IDsOnly bool
}

// Query is a compiled document query. It returns one row with one column,
// the document.
type Query struct {
	SQL  string
	Args []any
}

type documentKind int

const (
	kindCollection documentKind = iota
	kindSingle
	kindRelated
	kindRelationship
)

// documentPlan holds the validated inputs of one document query.
type documentPlan struct {
	kind documentKind

	// root is the entity of the rows paged into root_page. For related
	// documents these are the target rows; otherwise the addressed entity.
	root     *entityInfo
	rootType string

	// parent is the entity addressed by id for related and relationship
	// documents, and relation the relationship followed from it.
	parent   *entityInfo
	relation schema.Relationship

	id       any
	hasID    bool
	multiple bool

	sort     []sortKey
	includes []includePath
	links    map[string]string
}

type sortKey struct {
	name string
	desc bool
}

type includePath struct {
	path  string
	chain []schema.Relationship
}

// BuildSelect compiles a collection document for entity.
func BuildSelect(reg *Registry, opts Options, entity string, req Request) (Query, error) {
	c := newCompiler(reg, opts, req)
	info, err := c.registered(entity)
	if err != nil {
		return Query{}, err
	}
	plan := &documentPlan{kind: kindCollection, root: info, multiple: true}
	return c.build(plan)
}

// BuildSelectOne compiles a single-resource document for the entity row
// whose identity equals id. Data is null when no row matches.
func BuildSelectOne(reg *Registry, opts Options, entity string, id any, req Request) (Query, error) {
	c := newCompiler(reg, opts, req)
	info, err := c.registered(entity)
	if err != nil {
		return Query{}, err
	}
	plan := &documentPlan{kind: kindSingle, root: info, id: id, hasID: true}
	return c.build(plan)
}

// BuildRelated compiles a document whose primary data is the resources
// related to the entity row identified by id: an array for to-many
// relationships and an object or null for to-one.
func BuildRelated(reg *Registry, opts Options, entity string, id any, relationship string, req Request) (Query, error) {
	c := newCompiler(reg, opts, req)
	parent, rel, err := c.relationOf(entity, relationship)
	if err != nil {
		return Query{}, err
	}
	target, err := reg.info(rel.Target)
	if err != nil {
		return Query{}, err
	}
	plan := &documentPlan{
		kind:     kindRelated,
		root:     target,
		parent:   parent,
		relation: rel,
		id:       id,
		hasID:    true,
		multiple: rel.ToMany(),
	}
	return c.build(plan)
}

// BuildRelationship compiles a document whose primary data is the
// resource linkage of one relationship of the entity row identified by id.
func BuildRelationship(reg *Registry, opts Options, entity string, id any, relationship string, req Request) (Query, error) {
	c := newCompiler(reg, opts, req)
	parent, rel, err := c.relationOf(entity, relationship)
	if err != nil {
		return Query{}, err
	}
	plan := &documentPlan{
		kind:     kindRelationship,
		root:     parent,
		parent:   parent,
		relation: rel,
		id:       id,
		hasID:    true,
	}
	return c.build(plan)
}

// compiler carries the state of one build. It is not reused.
type compiler struct {
	reg  *Registry
	opts *Options
	req  *Request
	seq  int
}

func newCompiler(reg *Registry, opts Options, req Request) *compiler {
	if req.Limit < 0 {
		req.Limit = 0
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return &compiler{reg: reg, opts: &opts, req: &req}
}

// alias returns a fresh row alias.
func (c *compiler) alias(prefix string) string {
	c.seq++
	return fmt.Sprintf("%s_%d", prefix, c.seq)
}

func (c *compiler) registered(entity string) (*entityInfo, error) {
	if _, err := c.reg.TypeNameOf(entity); err != nil {
		return nil, err
	}
	return c.reg.info(entity)
}

func (c *compiler) relationOf(entity, relationship string) (*entityInfo, schema.Relationship, error) {
	info, err := c.registered(entity)
	if err != nil {
		return nil, schema.Relationship{}, err
	}
	rel, ok := info.relationship(relationship)
	if !ok {
		return nil, schema.Relationship{}, unknownRelationship(entity, relationship)
	}
	return info, rel, nil
}

// requested returns the field list for a type, or nil when the request
// does not restrict it.
func (c *compiler) requested(typeName string) []string {
	fields, ok := c.req.Fields[typeName]
	if !ok {
		return nil
	}
	if fields == nil {
		return []string{}
	}
	return fields
}

func (c *compiler) build(plan *documentPlan) (Query, error) {
	if err := c.complete(plan); err != nil {
		return Query{}, err
	}
	stmt, err := c.render(plan)
	if err != nil {
		return Query{}, err
	}
	args := append([]any(nil), c.req.Args...)
	if plan.hasID {
		args = append(args, plan.id)
	}
	return Query{SQL: stmt.SQL(), Args: args}, nil
}

// complete validates the request against the plan's root entity.
func (c *compiler) complete(plan *documentPlan) error {
	if err := c.checkFieldKeys(); err != nil {
		return err
	}

	rootType, err := c.reg.TypeNameOf(plan.root.entity.Name)
	if err != nil {
		return err
	}
	plan.rootType = rootType

	for _, term := range c.req.Sort {
		name, desc := schema.ParseOrder(term)
		if name == schema.DefaultIdentity {
			name = plan.root.entity.IdentityName()
		}
		if _, isRel := plan.root.relIndex[name]; isRel {
			return relationshipSort(name)
		}
		if _, ok := plan.root.lookup(name); !ok {
			return unknownField(plan.root.entity.Name, name)
		}
		plan.sort = append(plan.sort, sortKey{name: name, desc: desc})
	}

	for _, path := range Subpaths(c.req.Include) {
		chain, err := ResolveRelationshipChain(c.reg.graph, plan.root.entity.Name, path)
		if err != nil {
			return err
		}
		for _, rel := range chain {
			if _, err := c.reg.TypeNameOf(rel.Target); err != nil {
				return err
			}
		}
		plan.includes = append(plan.includes, includePath{path: path, chain: chain})
	}

	plan.links = c.req.Links
	return nil
}

// checkFieldKeys rejects field lists for types that are not registered,
// naming all of them at once.
func (c *compiler) checkFieldKeys() error {
	var unknown []string
	for key := range c.req.Fields {
		if _, err := c.reg.EntityOf(key); err != nil {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return unknownFieldKeys(unknown)
	}
	return nil
}

// rootOrdering returns the ordering of the primary rows read from alias:
// the requested sort, else the relationship ordering for related
// documents, else the identity.
func (c *compiler) rootOrdering(plan *documentPlan, alias string) []sqldsl.OrderTerm {
	if len(plan.sort) > 0 {
		terms := make([]sqldsl.OrderTerm, len(plan.sort))
		for i, k := range plan.sort {
			expr, _ := plan.root.valueExpr(k.name, alias)
			terms[i] = sqldsl.OrderTerm{Expr: expr, Desc: k.desc}
		}
		return terms
	}
	if plan.kind == kindRelated {
		return relationOrdering(plan.relation, plan.root, alias)
	}
	return []sqldsl.OrderTerm{{Expr: plan.root.identityExpr(alias)}}
}
