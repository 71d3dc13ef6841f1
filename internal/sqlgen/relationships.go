package sqlgen

import (
	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
	"github.com/pthm/docsql/schema"
)

// relationValue is one resolved relationship ready to be emitted.
type relationValue struct {
	Name  string
	Value sqldsl.Expr
}

// hop is one relationship step resolved against a concrete source alias.
type hop struct {
	rel    schema.Relationship
	cond   schema.JoinCondition
	source *entityInfo
	target *entityInfo

	srcAlias     string
	targetAlias  string
	throughAlias string
}

func (c *compiler) newHop(source *entityInfo, srcAlias string, rel schema.Relationship) (*hop, error) {
	target, err := c.reg.info(rel.Target)
	if err != nil {
		return nil, err
	}
	cond, err := c.reg.graph.JoinConditionOf(source.entity.Name, rel.Name)
	if err != nil {
		return nil, err
	}
	h := &hop{
		rel:         rel,
		cond:        cond,
		source:      source,
		target:      target,
		srcAlias:    srcAlias,
		targetAlias: c.alias("rel"),
	}
	if cond.Through != nil {
		h.throughAlias = c.alias("thru")
	}
	return h, nil
}

func (h *hop) throughTable() sqldsl.TableExpr {
	if h.cond.Through.Subquery != "" {
		return sqldsl.SubqueryTable{Query: sqldsl.Raw(h.cond.Through.Subquery), Alias: h.throughAlias}
	}
	return sqldsl.TableAs(h.cond.Through.Table, h.throughAlias)
}

func (h *hop) sourceKey() sqldsl.Expr {
	return sqldsl.Col{Table: h.srcAlias, Column: h.cond.LocalColumn}
}

func (h *hop) targetKey() sqldsl.Expr {
	return sqldsl.Col{Table: h.targetAlias, Column: h.cond.RemoteColumn}
}

// correlated returns FROM/JOIN/WHERE parts selecting the target rows of
// the source row as a correlated subquery:
//
//	FROM target t [JOIN through j ON j.target_col = t.remote]
//	WHERE t.remote = src.local | j.source_col = src.local
func (h *hop) correlated() (sqldsl.TableExpr, []sqldsl.JoinClause, sqldsl.Expr) {
	from := sqldsl.TableAs(h.target.entity.Table, h.targetAlias)
	if h.cond.Through == nil {
		return from, nil, sqldsl.Eq{Left: h.targetKey(), Right: h.sourceKey()}
	}
	join := sqldsl.JoinClause{
		Type:      "INNER",
		TableExpr: h.throughTable(),
		On:        sqldsl.Eq{Left: sqldsl.Col{Table: h.throughAlias, Column: h.cond.Through.TargetColumn}, Right: h.targetKey()},
	}
	where := sqldsl.Eq{Left: sqldsl.Col{Table: h.throughAlias, Column: h.cond.Through.SourceColumn}, Right: h.sourceKey()}
	return from, []sqldsl.JoinClause{join}, where
}

// joins returns the JOIN clauses that extend a FROM list containing the
// source alias with the target rows.
func (h *hop) joins() []sqldsl.JoinClause {
	if h.cond.Through == nil {
		return []sqldsl.JoinClause{{
			Type:      "INNER",
			TableExpr: sqldsl.TableAs(h.target.entity.Table, h.targetAlias),
			On:        sqldsl.Eq{Left: h.targetKey(), Right: h.sourceKey()},
		}}
	}
	return []sqldsl.JoinClause{
		{
			Type:      "INNER",
			TableExpr: h.throughTable(),
			On:        sqldsl.Eq{Left: sqldsl.Col{Table: h.throughAlias, Column: h.cond.Through.SourceColumn}, Right: h.sourceKey()},
		},
		{
			Type:      "INNER",
			TableExpr: sqldsl.TableAs(h.target.entity.Table, h.targetAlias),
			On:        sqldsl.Eq{Left: h.targetKey(), Right: sqldsl.Col{Table: h.throughAlias, Column: h.cond.Through.TargetColumn}},
		},
	}
}

// ordering returns the relationship's declared ordering over the target
// alias, falling back to the target identity.
func (h *hop) ordering() []sqldsl.OrderTerm {
	return relationOrdering(h.rel, h.target, h.targetAlias)
}

func relationOrdering(rel schema.Relationship, target *entityInfo, alias string) []sqldsl.OrderTerm {
	if len(rel.OrderBy) == 0 {
		return []sqldsl.OrderTerm{{Expr: target.identityExpr(alias)}}
	}
	terms := make([]sqldsl.OrderTerm, 0, len(rel.OrderBy))
	for _, t := range rel.OrderBy {
		name, desc := schema.ParseOrder(t)
		expr, _ := target.valueExpr(name, alias)
		terms = append(terms, sqldsl.OrderTerm{Expr: expr, Desc: desc})
	}
	return terms
}

// relationshipData builds the correlated subquery producing a
// relationship's resource linkage: an identifier (or NULL) for to-one and
// an identifier array (never NULL) for to-many.
func (c *compiler) relationshipData(info *entityInfo, alias string, rel schema.Relationship) (sqldsl.Expr, error) {
	h, err := c.newHop(info, alias, rel)
	if err != nil {
		return nil, err
	}
	ident, err := c.identifier(h.target, h.targetAlias)
	if err != nil {
		return nil, err
	}
	from, joins, where := h.correlated()
	stmt := sqldsl.SelectStmt{FromExpr: from, Joins: joins, Where: where}
	if rel.ToMany() {
		stmt.ColumnExprs = []sqldsl.Expr{sqldsl.AggOrEmpty(ident, h.ordering()...)}
	} else {
		stmt.ColumnExprs = []sqldsl.Expr{ident}
		stmt.OrderBy = h.ordering()
		stmt.Limit = 1
	}
	return sqldsl.Subquery{Query: stmt}, nil
}

// selectedRelationships returns the relationships to emit. requested is
// nil when the request has no field list for the type; otherwise only
// relationships named in it are emitted, in declaration order.
func selectedRelationships(info *entityInfo, requested []string) []schema.Relationship {
	if requested == nil {
		return info.rels
	}
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}
	var out []schema.Relationship
	for _, rel := range info.rels {
		if want[rel.Name] {
			out = append(out, rel)
		}
	}
	return out
}

// resolveRelationships builds one relationship object per selected
// relationship: {data, links?}.
func (c *compiler) resolveRelationships(info *entityInfo, requested []string, alias string) ([]relationValue, error) {
	rels := selectedRelationships(info, requested)
	values := make([]relationValue, 0, len(rels))
	for _, rel := range rels {
		data, err := c.relationshipData(info, alias, rel)
		if err != nil {
			return nil, err
		}
		pairs := []sqldsl.JSONPair{sqldsl.Pair("data", data)}
		links, err := c.relationshipLinks(info, alias, rel.Name)
		if err != nil {
			return nil, err
		}
		if links != nil {
			pairs = append(pairs, sqldsl.Pair("links", links))
		}
		values = append(values, relationValue{Name: rel.Name, Value: sqldsl.Obj(pairs...)})
	}
	return values, nil
}
