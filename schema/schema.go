// Package schema describes the entity graph that document queries are
// compiled against.
//
// The graph is deliberately small: entities backed by tables, the columns
// of those tables, extra attributes computed from columns, and named
// relationships between entities. It is the only knowledge the query
// compiler has about the database; nothing is introspected at runtime.
//
// # Entities and Attributes
//
// Every column of an entity is exposed as an attribute. A column's
// attribute name defaults to the column name and can be changed with
// Attribute (a primary key column "_id" exposed as "id", for example).
// Additional attributes are either derived or synonyms:
//
//	Attribute{Name: "name_upper", Expression: "upper({name})"}
//	Attribute{Name: "comment_count", Expression: "(SELECT count(*) FROM comments c WHERE c.article_id = {_id})"}
//	Attribute{Name: "title", Synonym: "name"}
//
// Expression placeholders name columns of the same entity. The compiler
// rebinds them to whichever row source the attribute is selected from.
//
// # Relationships
//
// A relationship joins LocalColumn on the source entity to RemoteColumn on
// the target, optionally through an association table or subquery:
//
//	Relationship{Name: "author", Target: "User", Cardinality: One,
//	    LocalColumn: "author_id", RemoteColumn: "id"}
//	Relationship{Name: "groups", Target: "Group", Cardinality: Many,
//	    LocalColumn: "id", RemoteColumn: "id",
//	    Through: &Through{Table: "user_groups", SourceColumn: "user_id", TargetColumn: "group_id"}}
//
// # Loading
//
// Schemas are usually written as YAML and loaded with LoadFile or Parse.
// Model implements Graph, the read-only view the compiler consumes.
package schema

import "strings"

// DefaultIdentity is the identity attribute name used when an entity does
// not declare one.
const DefaultIdentity = "id"

// Cardinality distinguishes to-one from to-many relationships.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// ForeignKey is the target of a column that references another table.
type ForeignKey struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Column is a physical column of an entity's table.
type Column struct {
	Name       string      `json:"name"`
	Type       string      `json:"type,omitempty"`
	Attribute  string      `json:"attribute,omitempty"`
	PrimaryKey bool        `json:"primary_key,omitempty"`
	References *ForeignKey `json:"references,omitempty"`
}

// AttributeName returns the attribute name the column is exposed under.
func (c Column) AttributeName() string {
	if c.Attribute != "" {
		return c.Attribute
	}
	return c.Name
}

// AttributeKind identifies how an attribute's value is produced.
type AttributeKind int

const (
	KindColumn AttributeKind = iota
	KindDerived
	KindSynonym
)

func (k AttributeKind) String() string {
	switch k {
	case KindColumn:
		return "column"
	case KindDerived:
		return "derived"
	case KindSynonym:
		return "synonym"
	default:
		return "unknown"
	}
}

// Attribute is a scalar value exposed by an entity.
//
// Declared attributes set either Expression (derived) or Synonym. The
// attributes returned by Graph.AttributesOf additionally include one
// column-backed attribute per column, with Column set.
type Attribute struct {
	Name       string `json:"name"`
	Expression string `json:"expression,omitempty"`
	Synonym    string `json:"synonym,omitempty"`
	Type       string `json:"type,omitempty"`

	Column *Column `json:"-"`
}

// Kind reports how the attribute's value is produced.
func (a Attribute) Kind() AttributeKind {
	switch {
	case a.Column != nil:
		return KindColumn
	case a.Synonym != "":
		return KindSynonym
	default:
		return KindDerived
	}
}

// Through describes the association step of a many-to-many relationship.
// Exactly one of Table and Subquery is set.
type Through struct {
	Table        string `json:"table,omitempty"`
	Subquery     string `json:"subquery,omitempty"`
	SourceColumn string `json:"source_column"`
	TargetColumn string `json:"target_column"`
}

// Relationship is a named edge from one entity to another.
//
// OrderBy lists target attribute names, each optionally prefixed with "-"
// for descending order. Without it, related rows are ordered by the target
// identity.
type Relationship struct {
	Name         string      `json:"name"`
	Target       string      `json:"target"`
	Cardinality  Cardinality `json:"cardinality"`
	LocalColumn  string      `json:"local_column"`
	RemoteColumn string      `json:"remote_column"`
	Through      *Through    `json:"through,omitempty"`
	OrderBy      []string    `json:"order_by,omitempty"`
}

// ToMany reports whether the relationship yields a collection.
func (r Relationship) ToMany() bool {
	return r.Cardinality == Many
}

// Entity is a table-backed type in the graph.
//
// An entity with AliasOf set is a re-labelled view of another entity: it
// shares the base's table, columns, attributes and relationships but has
// its own name, so it can be addressed separately in a graph.
type Entity struct {
	Name          string         `json:"name"`
	Table         string         `json:"table,omitempty"`
	Identity      string         `json:"identity,omitempty"`
	AliasOf       string         `json:"alias_of,omitempty"`
	Columns       []Column       `json:"columns,omitempty"`
	Attributes    []Attribute    `json:"attributes,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// IdentityName returns the name of the identity attribute.
func (e *Entity) IdentityName() string {
	if e.Identity != "" {
		return e.Identity
	}
	return DefaultIdentity
}

// Column looks up a column by its physical name.
func (e *Entity) Column(name string) (Column, bool) {
	for _, c := range e.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Relationship looks up a relationship by name.
func (e *Entity) Relationship(name string) (Relationship, bool) {
	for _, r := range e.Relationships {
		if r.Name == name {
			return r, true
		}
	}
	return Relationship{}, false
}

// JoinCondition is the resolved join between a relationship's source and
// target rows.
type JoinCondition struct {
	// LocalColumn is a column of the source entity.
	LocalColumn string
	// RemoteColumn is a column of the target entity.
	RemoteColumn string
	// Through is set for association-table joins.
	Through *Through
}

// Graph is the read-only view of an entity graph consumed by the query
// compiler. Implementations must be safe for concurrent use.
type Graph interface {
	// Entity returns the entity with the given name.
	Entity(name string) (*Entity, bool)
	// AttributesOf lists the entity's attributes: one per column in column
	// order, followed by declared derived and synonym attributes.
	AttributesOf(entity string) ([]Attribute, error)
	// RelationshipsOf lists the entity's relationships in declaration order.
	RelationshipsOf(entity string) ([]Relationship, error)
	// JoinConditionOf resolves how a relationship joins its target.
	JoinConditionOf(entity, relationship string) (JoinCondition, error)
}

// ParseOrder splits an ordering term such as "-created_at" into the
// attribute name and the descending flag.
func ParseOrder(term string) (name string, desc bool) {
	if strings.HasPrefix(term, "-") {
		return term[1:], true
	}
	return term, false
}
