package sqlgen

import (
	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
)

// =============================================================================
// Document Render Layer
// =============================================================================
//
// Every document query has the same outline:
//
//	WITH root_rows AS (
//	    SELECT src.* FROM <table or From> AS src [JOIN ...] [WHERE <identity> = $n]
//	),
//	root_page AS (
//	    SELECT r.*, row_number() OVER (ORDER BY <sort>) AS docsql_position
//	    FROM root_rows AS r
//	    ORDER BY <sort> LIMIT <limit> OFFSET <offset>
//	)
//	SELECT jsonb_build_object('data', <data>, 'included', <included>, 'links', <links>) AS document
//
// Primary data and the included set are both computed from root_page, so
// limit and offset bound both.

const (
	rootRowsCTE    = "root_rows"
	rootPageCTE    = "root_page"
	positionColumn = "docsql_position"
	fragmentColumn = "fragment"

	// DocumentColumn names the single column of a document query.
	DocumentColumn = "document"

	sourceAlias = "src"
	rowsAlias   = "r"
	pageAlias   = "p"
)

func (c *compiler) render(plan *documentPlan) (sqldsl.SQLer, error) {
	rows, err := c.rootRows(plan)
	if err != nil {
		return nil, err
	}
	data, err := c.data(plan)
	if err != nil {
		return nil, err
	}
	included, err := c.included(plan)
	if err != nil {
		return nil, err
	}

	pairs := []sqldsl.JSONPair{sqldsl.Pair("data", data)}
	if included != nil {
		pairs = append(pairs, sqldsl.Pair("included", included))
	}
	if len(plan.links) > 0 {
		links, err := sqldsl.JSONLiteral(plan.links)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, sqldsl.Pair("links", links))
	}

	var doc sqldsl.Expr = sqldsl.Obj(pairs...)
	if c.req.AsText {
		doc = sqldsl.Text(doc)
	}

	return sqldsl.WithCTE{
		CTEs: []sqldsl.CTEDef{
			{Name: rootRowsCTE, Query: rows},
			{Name: rootPageCTE, Query: c.rootPage(plan)},
		},
		Query: sqldsl.SelectStmt{
			ColumnExprs: []sqldsl.Expr{sqldsl.SelectAs(doc, DocumentColumn)},
		},
	}, nil
}

// source returns the row source of the addressed entity: its table, or the
// caller's From statement as a derived table.
func (c *compiler) source(info *entityInfo) sqldsl.TableExpr {
	if c.req.From != "" {
		return sqldsl.SubqueryTable{Query: sqldsl.Raw(c.req.From), Alias: sourceAlias}
	}
	return sqldsl.TableAs(info.entity.Table, sourceAlias)
}

func (c *compiler) idParam() sqldsl.Param {
	return sqldsl.Param(len(c.req.Args) + 1)
}

func (c *compiler) rootRows(plan *documentPlan) (sqldsl.SelectStmt, error) {
	switch plan.kind {
	case kindCollection:
		return sqldsl.SelectStmt{
			ColumnExprs: []sqldsl.Expr{sqldsl.Star{Table: sourceAlias}},
			FromExpr:    c.source(plan.root),
		}, nil
	case kindRelated:
		h, err := c.newHop(plan.parent, sourceAlias, plan.relation)
		if err != nil {
			return sqldsl.SelectStmt{}, err
		}
		return sqldsl.SelectStmt{
			ColumnExprs: []sqldsl.Expr{sqldsl.Star{Table: h.targetAlias}},
			FromExpr:    c.source(plan.parent),
			Joins:       h.joins(),
			Where:       sqldsl.Eq{Left: plan.parent.identityExpr(sourceAlias), Right: c.idParam()},
		}, nil
	default:
		return sqldsl.SelectStmt{
			ColumnExprs: []sqldsl.Expr{sqldsl.Star{Table: sourceAlias}},
			FromExpr:    c.source(plan.root),
			Where:       sqldsl.Eq{Left: plan.root.identityExpr(sourceAlias), Right: c.idParam()},
		}, nil
	}
}

func (c *compiler) rootPage(plan *documentPlan) sqldsl.SelectStmt {
	order := c.rootOrdering(plan, rowsAlias)
	stmt := sqldsl.SelectStmt{
		ColumnExprs: []sqldsl.Expr{
			sqldsl.Star{Table: rowsAlias},
			sqldsl.SelectAs(sqldsl.RowNumber{OrderBy: order}, positionColumn),
		},
		FromExpr: sqldsl.TableAs(rootRowsCTE, rowsAlias),
		OrderBy:  order,
	}
	if plan.multiple {
		stmt.Limit = c.req.Limit
		stmt.Offset = c.req.Offset
	} else {
		stmt.Limit = 1
	}
	return stmt
}

// data builds the primary data expression.
func (c *compiler) data(plan *documentPlan) (sqldsl.Expr, error) {
	page := sqldsl.TableAs(rootPageCTE, pageAlias)
	position := sqldsl.OrderTerm{Expr: sqldsl.Col{Table: pageAlias, Column: positionColumn}}

	if plan.kind == kindRelationship {
		linkage, err := c.relationshipData(plan.root, pageAlias, plan.relation)
		if err != nil {
			return nil, err
		}
		return sqldsl.Subquery{Query: sqldsl.SelectStmt{
			ColumnExprs: []sqldsl.Expr{linkage},
			FromExpr:    page,
			Limit:       1,
		}}, nil
	}

	frag, err := c.fragment(plan.root, pageAlias, c.req.IDsOnly)
	if err != nil {
		return nil, err
	}
	if plan.multiple {
		return sqldsl.Subquery{Query: sqldsl.SelectStmt{
			ColumnExprs: []sqldsl.Expr{sqldsl.AggOrEmpty(frag, position)},
			FromExpr:    page,
		}}, nil
	}
	return sqldsl.Subquery{Query: sqldsl.SelectStmt{
		ColumnExprs: []sqldsl.Expr{frag},
		FromExpr:    page,
		OrderBy:     []sqldsl.OrderTerm{position},
		Limit:       1,
	}}, nil
}

// fragment builds the resource object of the entity row read from alias:
// id and type, then attributes, relationships and links when non-empty.
func (c *compiler) fragment(info *entityInfo, alias string, idsOnly bool) (sqldsl.Expr, error) {
	pairs, err := c.identifierPairs(info, alias)
	if err != nil {
		return nil, err
	}
	if idsOnly {
		return sqldsl.Obj(pairs...), nil
	}

	typeName, err := c.reg.TypeNameOf(info.entity.Name)
	if err != nil {
		return nil, err
	}
	requested := c.requested(typeName)

	attrs, err := c.resolveFields(info, requested, alias)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		obj := make([]sqldsl.JSONPair, len(attrs))
		for i, a := range attrs {
			obj[i] = sqldsl.Pair(a.Name, a.Value)
		}
		pairs = append(pairs, sqldsl.Pair("attributes", sqldsl.Obj(obj...)))
	}

	rels, err := c.resolveRelationships(info, requested, alias)
	if err != nil {
		return nil, err
	}
	if len(rels) > 0 {
		obj := make([]sqldsl.JSONPair, len(rels))
		for i, r := range rels {
			obj[i] = sqldsl.Pair(r.Name, r.Value)
		}
		pairs = append(pairs, sqldsl.Pair("relationships", sqldsl.Obj(obj...)))
	}

	links, err := c.selfLink(info, alias)
	if err != nil {
		return nil, err
	}
	if links != nil {
		pairs = append(pairs, sqldsl.Pair("links", links))
	}
	return sqldsl.Obj(pairs...), nil
}
