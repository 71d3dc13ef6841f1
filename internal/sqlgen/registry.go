package sqlgen

import (
	"fmt"
	"sort"

	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
	"github.com/pthm/docsql/schema"
)

// Registry maps resource type names to the entities of a schema graph.
// It is immutable once built and safe for concurrent use.
type Registry struct {
	graph    schema.Graph
	byType   map[string]string
	byEntity map[string]string
	types    []string
	entities map[string]*entityInfo
}

// entityInfo caches what the compiler needs to know about one entity.
type entityInfo struct {
	entity    *schema.Entity
	attrs     []schema.Attribute
	attrIndex map[string]int
	rels      []schema.Relationship
	relIndex  map[string]int

	// derived holds parsed expression templates with their placeholders
	// bound to columns of the entity's own table. Rebind moves them onto a
	// row alias.
	derived map[string]sqldsl.Expr
}

// NewRegistry builds a registry from a type name -> entity name mapping.
//
// Every mapped entity, and every entity reachable from one through
// relationships, is compiled up front. A missing entity fails with
// ErrUnknownModel, an entity without its identity attribute with
// ErrIdentityMissing.
func NewRegistry(graph schema.Graph, types map[string]string) (*Registry, error) {
	r := &Registry{
		graph:    graph,
		byType:   make(map[string]string, len(types)),
		byEntity: make(map[string]string, len(types)),
		entities: make(map[string]*entityInfo),
	}

	for typeName := range types {
		r.types = append(r.types, typeName)
	}
	sort.Strings(r.types)

	queue := make([]string, 0, len(types))
	for _, typeName := range r.types {
		entity := types[typeName]
		if prev, dup := r.byEntity[entity]; dup {
			return nil, fmt.Errorf("%w: entity %q registered as both %q and %q",
				schema.ErrInvalidSchema, entity, prev, typeName)
		}
		r.byType[typeName] = entity
		r.byEntity[entity] = typeName
		queue = append(queue, entity)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, done := r.entities[name]; done {
			continue
		}
		info, err := compileEntity(graph, name)
		if err != nil {
			return nil, err
		}
		r.entities[name] = info
		for _, rel := range info.rels {
			queue = append(queue, rel.Target)
		}
	}

	for _, info := range r.entities {
		for _, rel := range info.rels {
			if err := r.checkOrdering(info, rel); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func compileEntity(graph schema.Graph, name string) (*entityInfo, error) {
	entity, ok := graph.Entity(name)
	if !ok {
		return nil, unknownModel(name)
	}
	attrs, err := graph.AttributesOf(name)
	if err != nil {
		return nil, fmt.Errorf("loading attributes of %s: %w", name, err)
	}
	rels, err := graph.RelationshipsOf(name)
	if err != nil {
		return nil, fmt.Errorf("loading relationships of %s: %w", name, err)
	}

	info := &entityInfo{
		entity:    entity,
		attrs:     attrs,
		attrIndex: make(map[string]int, len(attrs)),
		rels:      rels,
		relIndex:  make(map[string]int, len(rels)),
		derived:   make(map[string]sqldsl.Expr),
	}
	for i, a := range attrs {
		info.attrIndex[a.Name] = i
		if a.Kind() != schema.KindDerived {
			continue
		}
		tmpl, err := sqldsl.ParseTemplate(a.Expression)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %s.%s: %v", schema.ErrInvalidSchema, name, a.Name, err)
		}
		bindings := make(map[string]sqldsl.Expr)
		for _, ref := range sqldsl.Placeholders(tmpl) {
			bindings[ref] = sqldsl.Col{Table: entity.Table, Column: ref}
		}
		info.derived[a.Name] = sqldsl.Bind(tmpl, bindings)
	}
	for i, rel := range rels {
		info.relIndex[rel.Name] = i
	}

	if _, ok := info.resolve(entity.IdentityName()); !ok {
		return nil, identityMissing(name, entity.IdentityName())
	}
	return info, nil
}

func (r *Registry) checkOrdering(info *entityInfo, rel schema.Relationship) error {
	target := r.entities[rel.Target]
	for _, term := range rel.OrderBy {
		name, _ := schema.ParseOrder(term)
		if _, ok := target.resolve(name); !ok {
			return fmt.Errorf("%w: relationship %s.%s orders by unknown attribute %q of %s",
				schema.ErrInvalidSchema, info.entity.Name, rel.Name, name, rel.Target)
		}
	}
	return nil
}

// Graph returns the schema graph the registry was built from.
func (r *Registry) Graph() schema.Graph {
	return r.graph
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.types...)
}

// EntityOf returns the entity registered under typeName.
func (r *Registry) EntityOf(typeName string) (*schema.Entity, error) {
	name, ok := r.byType[typeName]
	if !ok {
		return nil, unknownModel(typeName)
	}
	return r.entities[name].entity, nil
}

// TypeNameOf returns the type name an entity is registered under. Alias
// entities that are not registered themselves resolve through AliasOf to
// their base entity's type.
func (r *Registry) TypeNameOf(entity string) (string, error) {
	seen := make(map[string]bool)
	name := entity
	for !seen[name] {
		seen[name] = true
		if typeName, ok := r.byEntity[name]; ok {
			return typeName, nil
		}
		e, ok := r.graph.Entity(name)
		if !ok || e.AliasOf == "" {
			break
		}
		name = e.AliasOf
	}
	return "", unknownModel(entity)
}

// info returns the compiled entity. Only registered entities and entities
// reachable from them are compiled.
func (r *Registry) info(entity string) (*entityInfo, error) {
	if info, ok := r.entities[entity]; ok {
		return info, nil
	}
	return nil, unknownModel(entity)
}
