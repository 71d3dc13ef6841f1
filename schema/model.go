package schema

import (
	"fmt"

	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
)

// Model is an immutable, validated entity graph. It implements Graph.
type Model struct {
	entities map[string]*Entity
	order    []string
}

var _ Graph = (*Model)(nil)

// NewModel validates the entities and builds a Model. Alias entities are
// expanded against their base so lookups never need to follow AliasOf.
// Validation failures wrap ErrInvalidSchema.
func NewModel(entities ...Entity) (*Model, error) {
	declared := make(map[string]Entity, len(entities))
	order := make([]string, 0, len(entities))
	for _, e := range entities {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: entity without a name", ErrInvalidSchema)
		}
		if _, dup := declared[e.Name]; dup {
			return nil, fmt.Errorf("%w: entity %q declared twice", ErrInvalidSchema, e.Name)
		}
		declared[e.Name] = e
		order = append(order, e.Name)
	}

	m := &Model{entities: make(map[string]*Entity, len(entities)), order: order}
	for _, name := range order {
		resolved, err := expandAlias(declared, name)
		if err != nil {
			return nil, err
		}
		m.entities[name] = resolved
	}
	for _, name := range order {
		if err := m.validateEntity(m.entities[name]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// expandAlias returns a copy of the named entity with AliasOf chains
// resolved to the base entity's definition.
func expandAlias(declared map[string]Entity, name string) (*Entity, error) {
	seen := map[string]bool{name: true}
	e := declared[name]
	base := e
	for base.AliasOf != "" {
		next, ok := declared[base.AliasOf]
		if !ok {
			return nil, fmt.Errorf("%w: entity %q is an alias of unknown entity %q", ErrInvalidSchema, name, base.AliasOf)
		}
		if seen[next.Name] {
			return nil, fmt.Errorf("%w: alias cycle through entity %q", ErrInvalidSchema, name)
		}
		seen[next.Name] = true
		base = next
	}
	if e.AliasOf == "" {
		return &e, nil
	}
	return &Entity{
		Name:          e.Name,
		Table:         base.Table,
		Identity:      base.Identity,
		AliasOf:       e.AliasOf,
		Columns:       base.Columns,
		Attributes:    base.Attributes,
		Relationships: base.Relationships,
	}, nil
}

func (m *Model) validateEntity(e *Entity) error {
	if e.Table == "" {
		return fmt.Errorf("%w: entity %q has no table", ErrInvalidSchema, e.Name)
	}
	if !sqldsl.ValidTableName(e.Table) {
		return fmt.Errorf("%w: entity %q table %q is not a table or schema.table name", ErrInvalidSchema, e.Name, e.Table)
	}

	names := make(map[string]string)
	claim := func(name, what string) error {
		if name == "" {
			return fmt.Errorf("%w: entity %q has an unnamed %s", ErrInvalidSchema, e.Name, what)
		}
		if prev, ok := names[name]; ok {
			return fmt.Errorf("%w: entity %q declares %q as both %s and %s", ErrInvalidSchema, e.Name, name, prev, what)
		}
		names[name] = what
		return nil
	}

	columns := make(map[string]bool, len(e.Columns))
	for _, c := range e.Columns {
		if columns[c.Name] {
			return fmt.Errorf("%w: entity %q declares column %q twice", ErrInvalidSchema, e.Name, c.Name)
		}
		columns[c.Name] = true
		if err := claim(c.AttributeName(), "column attribute"); err != nil {
			return err
		}
	}

	for _, a := range e.Attributes {
		if err := claim(a.Name, "attribute"); err != nil {
			return err
		}
		switch {
		case a.Expression != "" && a.Synonym != "":
			return fmt.Errorf("%w: attribute %s.%s sets both expression and synonym", ErrInvalidSchema, e.Name, a.Name)
		case a.Expression != "":
			if err := validateExpression(e, a); err != nil {
				return err
			}
		case a.Synonym == "":
			return fmt.Errorf("%w: attribute %s.%s needs an expression or a synonym", ErrInvalidSchema, e.Name, a.Name)
		}
	}
	for _, a := range e.Attributes {
		if a.Synonym == "" {
			continue
		}
		if _, err := resolveSynonym(e, a.Name); err != nil {
			return err
		}
	}

	for _, r := range e.Relationships {
		if err := claim(r.Name, "relationship"); err != nil {
			return err
		}
		if err := m.validateRelationship(e, r); err != nil {
			return err
		}
	}
	return nil
}

func validateExpression(e *Entity, a Attribute) error {
	tmpl, err := sqldsl.ParseTemplate(a.Expression)
	if err != nil {
		return fmt.Errorf("%w: attribute %s.%s: %v", ErrInvalidSchema, e.Name, a.Name, err)
	}
	for _, ref := range sqldsl.Placeholders(tmpl) {
		if _, ok := e.Column(ref); !ok {
			return fmt.Errorf("%w: attribute %s.%s references unknown column %q", ErrInvalidSchema, e.Name, a.Name, ref)
		}
	}
	return nil
}

func (m *Model) validateRelationship(e *Entity, r Relationship) error {
	target, ok := m.entities[r.Target]
	if !ok {
		return fmt.Errorf("%w: relationship %s.%s targets unknown entity %q", ErrInvalidSchema, e.Name, r.Name, r.Target)
	}
	if r.Cardinality != One && r.Cardinality != Many {
		return fmt.Errorf("%w: relationship %s.%s has cardinality %q, want %q or %q", ErrInvalidSchema, e.Name, r.Name, r.Cardinality, One, Many)
	}
	if _, ok := e.Column(r.LocalColumn); !ok {
		return fmt.Errorf("%w: relationship %s.%s local column %q is not a column of %s", ErrInvalidSchema, e.Name, r.Name, r.LocalColumn, e.Name)
	}
	if _, ok := target.Column(r.RemoteColumn); !ok {
		return fmt.Errorf("%w: relationship %s.%s remote column %q is not a column of %s", ErrInvalidSchema, e.Name, r.Name, r.RemoteColumn, target.Name)
	}
	if t := r.Through; t != nil {
		if (t.Table == "") == (t.Subquery == "") {
			return fmt.Errorf("%w: relationship %s.%s must set exactly one of through.table and through.subquery", ErrInvalidSchema, e.Name, r.Name)
		}
		if t.Table != "" && !sqldsl.ValidTableName(t.Table) {
			return fmt.Errorf("%w: relationship %s.%s through.table %q is not a table or schema.table name", ErrInvalidSchema, e.Name, r.Name, t.Table)
		}
		if t.SourceColumn == "" || t.TargetColumn == "" {
			return fmt.Errorf("%w: relationship %s.%s through needs source_column and target_column", ErrInvalidSchema, e.Name, r.Name)
		}
	}
	return nil
}

// resolveSynonym follows synonym chains to a column or derived attribute.
func resolveSynonym(e *Entity, name string) (string, error) {
	seen := map[string]bool{}
	for {
		if seen[name] {
			return "", fmt.Errorf("%w: synonym cycle through %s.%s", ErrInvalidSchema, e.Name, name)
		}
		seen[name] = true
		a, ok := declaredAttribute(e, name)
		if !ok {
			for _, c := range e.Columns {
				if c.AttributeName() == name {
					return name, nil
				}
			}
			return "", fmt.Errorf("%w: synonym on %s refers to unknown attribute %q", ErrInvalidSchema, e.Name, name)
		}
		if a.Synonym == "" {
			return name, nil
		}
		name = a.Synonym
	}
}

func declaredAttribute(e *Entity, name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Entity implements Graph.
func (m *Model) Entity(name string) (*Entity, bool) {
	e, ok := m.entities[name]
	return e, ok
}

// Entities returns all entities in declaration order.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, len(m.order))
	for i, name := range m.order {
		out[i] = m.entities[name]
	}
	return out
}

// AttributesOf implements Graph.
func (m *Model) AttributesOf(entity string) ([]Attribute, error) {
	e, ok := m.entities[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	attrs := make([]Attribute, 0, len(e.Columns)+len(e.Attributes))
	for i := range e.Columns {
		c := e.Columns[i]
		attrs = append(attrs, Attribute{Name: c.AttributeName(), Type: c.Type, Column: &c})
	}
	attrs = append(attrs, e.Attributes...)
	return attrs, nil
}

// RelationshipsOf implements Graph.
func (m *Model) RelationshipsOf(entity string) ([]Relationship, error) {
	e, ok := m.entities[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return append([]Relationship(nil), e.Relationships...), nil
}

// JoinConditionOf implements Graph.
func (m *Model) JoinConditionOf(entity, relationship string) (JoinCondition, error) {
	e, ok := m.entities[entity]
	if !ok {
		return JoinCondition{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	r, ok := e.Relationship(relationship)
	if !ok {
		return JoinCondition{}, fmt.Errorf("%w: %s.%s", ErrUnknownRelationship, entity, relationship)
	}
	return JoinCondition{
		LocalColumn:  r.LocalColumn,
		RemoteColumn: r.RemoteColumn,
		Through:      r.Through,
	}, nil
}
