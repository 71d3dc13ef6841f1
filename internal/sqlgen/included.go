package sqlgen

import (
	"github.com/pthm/docsql/internal/sqlgen/sqldsl"
)

// included builds the compound document's included array, or nil when the
// member is omitted.
//
// Each include subpath contributes one UNION ALL branch that joins from
// root_page along the relationship chain and selects the reached resource
// objects. The same resource reached along several paths is collapsed with
// DISTINCT ON (type, id), and the result is ordered by type then id.
func (c *compiler) included(plan *documentPlan) (sqldsl.Expr, error) {
	if c.req.Include == nil {
		return nil, nil
	}
	if len(plan.includes) == 0 {
		if len(c.req.Include) > 0 || c.opts.EmptyIncluded {
			return sqldsl.EmptyJSONArray{}, nil
		}
		return nil, nil
	}

	blocks := make([]sqldsl.QueryBlock, 0, len(plan.includes))
	for _, inc := range plan.includes {
		branch, err := c.includeBranch(plan, inc)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, sqldsl.QueryBlock{
			Comments: []string{"include " + inc.path},
			Query:    branch,
		})
	}

	union := c.alias("inc")
	unionFrag := sqldsl.Col{Table: union, Column: fragmentColumn}
	distinct := sqldsl.SelectStmt{
		DistinctOn:  typeAndID(unionFrag),
		ColumnExprs: []sqldsl.Expr{unionFrag},
		FromExpr:    sqldsl.SubqueryTable{Query: sqldsl.UnionAll{Blocks: blocks}, Alias: union},
		OrderBy:     orderTerms(typeAndID(unionFrag)),
	}

	uniq := c.alias("uniq")
	uniqFrag := sqldsl.Col{Table: uniq, Column: fragmentColumn}
	return sqldsl.Subquery{Query: sqldsl.SelectStmt{
		ColumnExprs: []sqldsl.Expr{sqldsl.AggOrEmpty(uniqFrag, orderTerms(typeAndID(uniqFrag))...)},
		FromExpr:    sqldsl.SubqueryTable{Query: distinct, Alias: uniq},
	}}, nil
}

// includeBranch selects the resource objects reached from the primary rows
// along one relationship chain. A chain that ends at the root type skips
// resources already present as primary data.
func (c *compiler) includeBranch(plan *documentPlan, inc includePath) (sqldsl.SelectStmt, error) {
	start := c.alias("page")
	info, alias := plan.root, start

	var joins []sqldsl.JoinClause
	for _, rel := range inc.chain {
		h, err := c.newHop(info, alias, rel)
		if err != nil {
			return sqldsl.SelectStmt{}, err
		}
		joins = append(joins, h.joins()...)
		info, alias = h.target, h.targetAlias
	}

	frag, err := c.fragment(info, alias, false)
	if err != nil {
		return sqldsl.SelectStmt{}, err
	}
	stmt := sqldsl.SelectStmt{
		ColumnExprs: []sqldsl.Expr{sqldsl.SelectAs(frag, fragmentColumn)},
		FromExpr:    sqldsl.TableAs(rootPageCTE, start),
		Joins:       joins,
	}

	typeName, err := c.reg.TypeNameOf(info.entity.Name)
	if err != nil {
		return sqldsl.SelectStmt{}, err
	}
	if typeName == plan.rootType {
		seen := c.alias("seen")
		stmt.Where = sqldsl.NotInQuery{
			Expr: info.identityExpr(alias),
			Query: sqldsl.SelectStmt{
				ColumnExprs: []sqldsl.Expr{plan.root.identityExpr(seen)},
				FromExpr:    sqldsl.TableAs(rootPageCTE, seen),
			},
		}
	}
	return stmt, nil
}

func typeAndID(fragment sqldsl.Expr) []sqldsl.Expr {
	return []sqldsl.Expr{
		sqldsl.JSONField{Expr: fragment, Key: "type"},
		sqldsl.JSONField{Expr: fragment, Key: "id"},
	}
}

func orderTerms(exprs []sqldsl.Expr) []sqldsl.OrderTerm {
	terms := make([]sqldsl.OrderTerm, len(exprs))
	for i, e := range exprs {
		terms[i] = sqldsl.OrderTerm{Expr: e}
	}
	return terms
}
